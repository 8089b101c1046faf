package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const nextCSV = `url,originalUrl,readDate,title,tags,characterCount,wordCount,language,authors,publicationDate,minutes,rating,review,category
https://example.com/1,https://example.com/1,2021-01-01,One,"go,web",100,10,en,Alice,2020-05-01,5,8,Good <stuff>,tech
https://example.com/2,https://example.com/2,2021-01-02,,,,,en,,,,5,,tech
,,,Leftover,,,,,,,,,,
`

func TestRenderCSV(t *testing.T) {
	html, err := renderCSV(context.Background(), strings.NewReader(nextCSV))
	if err != nil {
		t.Fatalf("Failed to render CSV: %v", err)
	}

	if !strings.Contains(html, "<h2>Tech</h2>") {
		t.Errorf("Expected category header in:\n%s", html)
	}
	if !strings.Contains(html, "Good &lt;stuff&gt;") {
		t.Errorf("Expected escaped review in:\n%s", html)
	}
	if strings.Contains(html, "Leftover") {
		t.Error("Expected rows after the first empty URL to be left out")
	}
	if strings.Count(html, "<li ") != 1 {
		t.Errorf("Expected 1 list item, got %d", strings.Count(html, "<li "))
	}
}

func TestParseCSV(t *testing.T) {
	var out bytes.Buffer
	if err := parseCSV(context.Background(), strings.NewReader(nextCSV), &out); err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	var report parseReport
	if err := yaml.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Failed to decode report: %v\n%s", err, out.String())
	}

	if len(report.Articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(report.Articles))
	}
	a := report.Articles[0]
	if a.Row != 2 || a.Title != "One" || a.Category != "tech" {
		t.Errorf("Unexpected article: %+v", a)
	}
	if len(a.Tags) != 2 || a.Tags[0] != "go" || a.Tags[1] != "web" {
		t.Errorf("Unexpected tags: %v", a.Tags)
	}
	if a.Rating != "8" || a.Minutes != "5" {
		t.Errorf("Unexpected counts: rating %s, minutes %s", a.Rating, a.Minutes)
	}

	if len(report.Rejected) != 1 || report.Rejected[0] != 3 {
		t.Errorf("Expected row 3 to be rejected, got %v", report.Rejected)
	}
}

func TestParseCSVMalformed(t *testing.T) {
	var out bytes.Buffer
	err := parseCSV(context.Background(), strings.NewReader("url\n\"unterminated"), &out)
	if err == nil {
		t.Error("Expected error for malformed CSV")
	}
}
