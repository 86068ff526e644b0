package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dcmesh/pkg/decoder"
	"dcmesh/pkg/export"
	"dcmesh/pkg/types"
	"dcmesh/pkg/utils"
)

var acceptedExtensions = map[string]bool{".dcm": true, ".DCM": true}

func main() {
	inputDir := flag.String("input_dir", "", "input directory to scan for .dcm files")
	flag.StringVar(inputDir, "i", "", "shorthand for --input_dir")
	outputDir := flag.String("output_dir", "", "destination directory (a timestamped subdirectory is created inside it)")
	flag.StringVar(outputDir, "o", "", "shorthand for --output_dir")
	format := flag.String("format", "stl", "output format: stl, ply, obj")
	flag.StringVar(format, "f", "stl", "shorthand for --format")
	flag.Parse()

	if *inputDir == "" {
		printError("INVALID_ARGS", "usage: cli --input_dir/-i <dir> --output_dir/-o <dir> [--format/-f stl|ply|obj]")
		os.Exit(1)
	}

	exporter, err := export.ForFormat(*format)
	if err != nil {
		printError("INVALID_FORMAT", err.Error())
		os.Exit(1)
	}

	files, err := populateFiles(*inputDir)
	if err != nil {
		printError("FILE_NOT_FOUND", fmt.Sprintf("input_dir %s: %v", *inputDir, err))
		os.Exit(1)
	}
	fmt.Printf("Found %d files\n", len(files))

	destDir := *outputDir
	if destDir != "" {
		destDir = filepath.Join(destDir, time.Now().Format("2006-01-02-15-04-05"))
		if err := os.MkdirAll(destDir, 0755); err != nil {
			printError("IO_ERROR", fmt.Sprintf("failed to create output directory: %v", err))
			os.Exit(1)
		}
		fmt.Printf("output_dir %s\n", destDir)
	}

	exitCode := 0
	for _, path := range files {
		if err := processFile(path, destDir, *format, exporter); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

// populateFiles recursively scans dir for files with an accepted
// extension, skipping dotfiles.
func populateFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if acceptedExtensions[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func processFile(path, destDir, format string, exporter export.Exporter) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	mesh, err := decoder.Decode(data, types.Options{})
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for _, d := range mesh.Diagnostics {
		fmt.Printf("  [%s] %s: %s (source: %s)\n", filepath.Base(path), d.Code, d.Message, utils.HexPreview(data, 16))
	}
	fmt.Printf("%s: %d vertices, %d triangles, verified=%v\n", path, len(mesh.Vertices), len(mesh.Triangles), mesh.Verified)

	if destDir == "" {
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(destDir, base+"."+format)
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	if err := exporter.Export(out, mesh); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func printError(code, message string) {
	fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", code, message)
}
