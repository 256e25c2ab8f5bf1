// pagecheck inspects a PDF produced by pagecutter: it prints the
// physical size of every page and can render pages back to PNG for
// visual verification of the cut positions.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const pointsPerCM = 72.0 / 2.54

func main() {
	pdfPath := flag.String("file", "", "path to PDF file")
	renderDir := flag.String("render", "", "render each page as PNG into this directory")
	flag.Parse()

	if *pdfPath == "" {
		fmt.Println("Please provide a PDF file path using -file flag")
		os.Exit(1)
	}

	fmt.Printf("Analyzing PDF: %s\n", *pdfPath)

	dims, err := api.PageDimsFile(*pdfPath)
	if err != nil {
		fmt.Printf("Error getting page dimensions: %v\n", err)
		os.Exit(1)
	}

	for i, dim := range dims {
		fmt.Printf("Page %d: %.2f x %.2f pt (%.2f x %.2f cm)\n",
			i+1, dim.Width, dim.Height, dim.Width/pointsPerCM, dim.Height/pointsPerCM)
	}

	if *renderDir == "" {
		return
	}

	if err := renderPages(*pdfPath, *renderDir); err != nil {
		fmt.Printf("Error rendering pages: %v\n", err)
		os.Exit(1)
	}
}

func renderPages(pdfPath, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		img, err := doc.Image(pageNum)
		if err != nil {
			return fmt.Errorf("failed to render page %d: %w", pageNum+1, err)
		}

		outPath := filepath.Join(outDir, fmt.Sprintf("render_%03d.png", pageNum+1))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return err
		}
		f.Close()

		fmt.Printf("Rendered page %d -> %s\n", pageNum+1, outPath)
	}

	return nil
}
