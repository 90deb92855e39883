package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/slidepress/dsl"
)

const sampleDSL = `
deck Standard v1 {
  meta {
    name: "standard"
    keywords: [
      "slides"
      "default"
    ]
  }

  resources {
    font Body {
      src: "builtin:goregular"
    }

    color Accent = #1F4E79
  }

  slide {
    width: 960pt; height: 540pt
    background: #FFF
    indent: [0pt, 24pt, 48pt]
    footer: "${deck.title}  ${slide.number} / ${slide.total}"
  }

  // 标题加正文
  layout "title+content" {
    placeholder title {
      type: title
      x: 48pt; y: 32pt; width: 864pt; height: 72pt
    }
    placeholder body {
      type: body
      x: 5%; y: 120pt; width: 90%; height: 360pt
      capacity: 8
    }
  }

  layout content {
    placeholder body { type: body; x: 48pt; y: 48pt; width: 864pt; height: 440pt }
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Standard" {
		t.Fatalf("expected document name Standard, got %s", doc.Name)
	}
	if doc.Version != "v1" {
		t.Fatalf("expected version v1, got %s", doc.Version)
	}

	if len(doc.Sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(doc.Sections))
	}
	kinds := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind())
	}
	if got := strings.Join(kinds, ","); got != "meta,resources,slide,layout,layout" {
		t.Fatalf("unexpected section kinds: %s", got)
	}

	meta := doc.Sections[0].Meta
	name := meta.Block.Statements[0].Assignment
	if name == nil || name.Key != "name" || string(*name.Value.String) != "standard" {
		t.Fatalf("expected name assignment, got %+v", meta.Block.Statements[0])
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil || len(keywords.Value.Array.Values) != 2 {
		t.Fatalf("expected keywords array with 2 values, got %+v", keywords)
	}

	res := doc.Sections[1].Resources
	font := res.Block.Statements[0].Command
	if font == nil || font.Name != "font" || len(font.Args) != 1 || font.Args[0].Value != "Body" {
		t.Fatalf("unexpected font command: %+v", res.Block.Statements[0])
	}
	if font.Block == nil || font.Block.Statements[0].Assignment.Value.Raw() != "builtin:goregular" {
		t.Fatalf("font src missing")
	}
	color := res.Block.Statements[1].Command
	if color == nil || len(color.Args) != 3 || color.Args[1].Raw != "=" || color.Args[2].Value != "#1F4E79" {
		t.Fatalf("unexpected color command: %+v", color)
	}
	if color.Args[2].Type != "Color" {
		t.Fatalf("expected Color token, got %s", color.Args[2].Type)
	}

	slide := doc.Sections[2].Slide
	if len(slide.Block.Statements) != 5 {
		t.Fatalf("expected 5 slide statements, got %d", len(slide.Block.Statements))
	}
	if got := slide.Block.Statements[2].Assignment.Value.Raw(); got != "#FFF" {
		t.Fatalf("expected short color, got %s", got)
	}
	if got := slide.Block.Statements[3].Assignment.Value.Raw(); got != "0pt, 24pt, 48pt" {
		t.Fatalf("unexpected indent: %s", got)
	}
	if got := slide.Block.Statements[4].Assignment.Value.Raw(); !strings.Contains(got, "${slide.number}") {
		t.Fatalf("expected interpolation in footer, got %s", got)
	}

	layout := doc.Sections[3].Layout
	if layout.Name != "title+content" {
		t.Fatalf("expected quoted layout name, got %s", layout.Name)
	}
	if len(layout.Block.Statements) != 2 {
		t.Fatalf("expected 2 placeholders, got %d", len(layout.Block.Statements))
	}
	body := layout.Block.Statements[1].Command
	if body == nil || body.Name != "placeholder" || body.Args[0].Value != "body" {
		t.Fatalf("unexpected placeholder: %+v", layout.Block.Statements[1])
	}
	if len(body.Block.Statements) != 6 {
		t.Fatalf("expected 6 placeholder properties, got %d", len(body.Block.Statements))
	}
	if got := body.Block.Statements[1].Assignment.Value.Raw(); got != "5%" {
		t.Fatalf("expected percentage, got %s", got)
	}

	content := doc.Sections[4].Layout
	if content.Name != "content" {
		t.Fatalf("expected ident layout name, got %s", content.Name)
	}
	if n := len(content.Block.Statements[0].Command.Block.Statements); n != 5 {
		t.Fatalf("expected inline placeholder with 5 properties, got %d", n)
	}
}

func TestParseRejectsMissingHeader(t *testing.T) {
	if _, err := dsl.ParseString(`layout content { }`); err == nil {
		t.Fatalf("expected error for missing deck header")
	}
}
