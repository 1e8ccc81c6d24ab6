package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ── Startup display helpers ────────────────────────────────────────

var numbers = message.NewPrinter(language.English)

type display struct {
	w io.Writer
}

func (d display) banner(version string) {
	fmt.Fprintln(d.w)
	fmt.Fprintln(d.w, "\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Fprintf(d.w, "\033[36;1m  │\033[0m              simcore  %-20s\033[36;1m│\033[0m\n", version)
	fmt.Fprintln(d.w, "\033[36;1m  │\033[0m      frame-stepped ECS runtime            \033[36;1m│\033[0m")
	fmt.Fprintln(d.w, "\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Fprintln(d.w)
}

func (d display) section(title string) {
	lineLen := 46 - utf8.RuneCountInString(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Fprintf(d.w, "  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func (d display) stat(label string, count int) {
	d.value(label, numbers.Sprintf("%d", count))
}

func (d display) value(label, v string) {
	dotsLen := 42 - utf8.RuneCountInString(label) - utf8.RuneCountInString(v)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Fprintf(d.w, "  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), v)
}

func (d display) ok(msg string) {
	fmt.Fprintf(d.w, "  \033[32m✓\033[0m %s\n", msg)
}

func (d display) ready(msg string) {
	fmt.Fprintf(d.w, "  \033[32m▶\033[0m %s\n", msg)
}
