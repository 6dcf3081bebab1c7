package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/readinglog/readinglog-server/internal/service"
)

var seedFile string

// seedCatalog is the seed file layout. Books refer to authors by the key
// given in the same file.
type seedCatalog struct {
	Authors []seedAuthor `json:"authors"`
	Books   []seedBook   `json:"books"`
}

type seedAuthor struct {
	Key string `json:"key"`
	service.CreateAuthorRequest
}

type seedBook struct {
	Authors []string `json:"authors"`
	service.CreateBookRequest
}

// seedResult counts what a seed run created.
type seedResult struct {
	Authors int `json:"authors"`
	Books   int `json:"books"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load authors and books from a JSON file",
	Long: `Load authors and books from a JSON file into the catalog and search index.

File layout:
  {
    "authors": [{"key": "herbert", "name": "Frank Herbert", "birth_year": 1920}],
    "books":   [{"title": "Dune", "isbn": "9780441172719", "authors": ["herbert"],
                 "genres": ["Science Fiction"]}]
  }

Seeding stops at the first invalid entry; entries before it stay committed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		//#nosec G304 -- the operator names the file
		f, err := os.Open(seedFile)
		if err != nil {
			return err
		}
		defer f.Close()

		return withServices(func(i do.Injector) error {
			res, err := seed(cmd.Context(), do.MustInvoke[*service.AdminService](i), f)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(res)
			}
			fmt.Printf("Seeded %d authors and %d books\n", res.Authors, res.Books)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed file (required)")
	_ = seedCmd.MarkFlagRequired("file")
}

func seed(ctx context.Context, admin *service.AdminService, r io.Reader) (seedResult, error) {
	var res seedResult

	var catalog seedCatalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&catalog); err != nil {
		return res, fmt.Errorf("parse seed file: %w", err)
	}

	authorIDs := make(map[string]string, len(catalog.Authors))
	for n, a := range catalog.Authors {
		key := a.Key
		if key == "" {
			key = a.Name
		}
		if _, dup := authorIDs[key]; dup {
			return res, fmt.Errorf("author %d: duplicate key %q", n+1, key)
		}
		author, err := admin.CreateAuthor(ctx, a.CreateAuthorRequest)
		if err != nil {
			return res, fmt.Errorf("author %d (%s): %w", n+1, a.Name, err)
		}
		authorIDs[key] = author.ID
		res.Authors++
	}

	for n, b := range catalog.Books {
		req := b.CreateBookRequest
		for _, key := range b.Authors {
			id, ok := authorIDs[key]
			if !ok {
				return res, fmt.Errorf("book %d (%s): unknown author key %q", n+1, b.Title, key)
			}
			req.AuthorIDs = append(req.AuthorIDs, id)
		}
		if _, err := admin.CreateBook(ctx, req); err != nil {
			return res, fmt.Errorf("book %d (%s): %w", n+1, b.Title, err)
		}
		res.Books++
	}

	return res, nil
}
