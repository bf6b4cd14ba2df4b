// Obfuscator CLI — masks the named fields of a local or S3-hosted file
// in place.
//
// Usage:
//
//	obfuscator <file> '<json array of field names>'
//	obfuscator data.csv '["name", "email"]'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/gdpr-toolkit/obfuscator/pkg/config"
	"github.com/gdpr-toolkit/obfuscator/pkg/engine"
	"github.com/gdpr-toolkit/obfuscator/pkg/location"
	"github.com/gdpr-toolkit/obfuscator/pkg/storage"
	"github.com/gdpr-toolkit/obfuscator/pkg/version"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: obfuscator <file> <pii_fields>")
	fmt.Fprintln(os.Stderr, `Example: obfuscator data.csv '["name", "email"]'`)
	fmt.Fprintln(os.Stderr, `Example: obfuscator data.json '["name", "email"]'`)
	fmt.Fprintln(os.Stderr, `Example: obfuscator s3://bucket/data.parquet '["name", "email"]'`)
}

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Full())
		return
	}

	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}
	identifier := flag.Arg(0)

	var fields []string
	if err := json.Unmarshal([]byte(flag.Arg(1)), &fields); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid JSON for PII fields. Provide a JSON array of field names.")
		os.Exit(1)
	}
	if len(fields) == 0 {
		fmt.Fprintln(os.Stderr, "PII field list must not be empty.")
		os.Exit(1)
	}

	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env")
	}

	loc := location.Resolve(identifier)
	if loc.Kind == location.KindLocal {
		if _, err := os.Stat(loc.Path); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Input file not found: %s\n", loc.Path)
			os.Exit(1)
		}
	}

	eng := engine.New(storage.NewRouter(config.FromEnv()))
	result := eng.Process(context.Background(), loc, fields)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to format result:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
