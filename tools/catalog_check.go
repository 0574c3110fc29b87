package main

import (
	"fmt"
	"os"

	"listconsole/internal/catalog"
	"listconsole/internal/config"
)

// Validates a view catalog and prints what it declares.
//
//	go run tools/catalog_check.go [views.yaml]
func main() {
	path := config.Load().App.CatalogPath
	if len(os.Args) == 2 {
		path = os.Args[1]
	} else if len(os.Args) > 2 {
		fmt.Println("usage: go run tools/catalog_check.go [views.yaml]")
		os.Exit(1)
	}

	cat, err := catalog.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, v := range cat.Views {
		search := "-"
		if v.SearchPath != "" {
			search = v.SearchPath
		}
		fmt.Printf("%-16s entity=%-12s upstream=%-8s list=%s search=%s columns=%d row_actions=%d bulk_actions=%d\n",
			v.Name, v.Entity, v.Upstream, v.ListPath, search, len(v.Columns), len(v.RowActions), len(v.BulkActions))
	}
}
