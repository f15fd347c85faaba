// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	car "github.com/vaguilar/car-reader"

	"github.com/spf13/cobra"
)

var (
	wantHeader bool
	wantAssets bool
	wantAll    bool
	nameFilter string
)

func prettyPrint(buf []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func dumpCatalog(filePath string, cmd *cobra.Command) error {
	cat, err := car.Open(filePath, &car.Options{})
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filePath, err)
	}

	if wantHeader || wantAll {
		headerJSON, err := json.Marshal(cat.HeaderJSON())
		if err != nil {
			return err
		}
		fmt.Println(prettyPrint(headerJSON))
	}

	if wantAssets || wantAll {
		target := cat
		if nameFilter != "" {
			target = filterByName(cat, nameFilter)
		}
		assetsJSON, err := json.Marshal(target.AssetsJSON())
		if err != nil {
			return err
		}
		fmt.Println(prettyPrint(assetsJSON))
	}

	if len(cat.Anomalies) > 0 {
		for _, a := range cat.Anomalies {
			fmt.Fprintln(os.Stderr, "anomaly:", a)
		}
	}

	return nil
}

// filterByName returns a copy of cat whose Assets only include renditions
// resolving to the given facet name.
func filterByName(cat *car.AssetCatalog, name string) *car.AssetCatalog {
	filtered := *cat
	filtered.Assets = nil
	for _, asset := range cat.Assets {
		if asset.Name == name {
			filtered.Assets = append(filtered.Assets, asset)
		}
	}
	return &filtered
}

func dump(cmd *cobra.Command, args []string) {
	filePath := args[0]
	if err := dumpCatalog(filePath, cmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "cardump",
		Short: "A CoreUI asset-catalog (.car) parser",
		Long:  "Parses compiled asset catalogs and projects them as JSON",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("cardump 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps a catalog",
		Long:  "Dumps the header and/or per-asset JSON projection of a car file",
		Args:  cobra.ExactArgs(1),
		Run:   dump,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().BoolVarP(&wantHeader, "header", "", false, "Dump the header view")
	dumpCmd.Flags().BoolVarP(&wantAssets, "assets", "", false, "Dump the per-asset view")
	dumpCmd.Flags().BoolVarP(&wantAll, "all", "", false, "Dump header and assets")
	dumpCmd.Flags().StringVarP(&nameFilter, "name", "", "", "Only dump assets resolving to this facet name")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
