package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Token is a run of code drawn in one style. Color is a hex color or empty
// for the default foreground.
type Token struct {
	Text   string
	Color  string
	Bold   bool
	Italic bool
}

// Line is one source line.
type Line []Token

// Tokenizer splits source code into styled lines.
type Tokenizer interface {
	Tokenize(code, language, theme string) ([]Line, error)
}

// Themer is implemented by tokenizers that know a theme's colors.
type Themer interface {
	Background(theme string) string
	Foreground(theme string) string
}

// Chroma highlights with github.com/alecthomas/chroma. Unknown languages are
// guessed from the code; unknown themes fall back to chroma's default.
type Chroma struct{}

func (Chroma) Tokenize(code, language, theme string) ([]Line, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get(theme)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil, err
	}
	var out []Line
	for _, toks := range chroma.SplitTokensIntoLines(it.Tokens()) {
		line := make(Line, 0, len(toks))
		for _, tok := range toks {
			text := strings.TrimRight(tok.Value, "\r\n")
			if text == "" {
				continue
			}
			entry := style.Get(tok.Type)
			t := Token{
				Text:   text,
				Bold:   entry.Bold == chroma.Yes,
				Italic: entry.Italic == chroma.Yes,
			}
			if entry.Colour.IsSet() {
				t.Color = entry.Colour.String()
			}
			line = append(line, t)
		}
		out = append(out, line)
	}
	return trimTrailingEmpty(out), nil
}

func (Chroma) Background(theme string) string {
	bg := styles.Get(theme).Get(chroma.Background).Background
	if !bg.IsSet() {
		return ""
	}
	return bg.String()
}

func (Chroma) Foreground(theme string) string {
	fg := styles.Get(theme).Get(chroma.Text).Colour
	if !fg.IsSet() {
		return ""
	}
	return fg.String()
}

// Plain returns the code unstyled, one token per line.
type Plain struct{}

func (Plain) Tokenize(code, _, _ string) ([]Line, error) {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	var out []Line
	for _, s := range strings.Split(code, "\n") {
		if s == "" {
			out = append(out, Line{})
			continue
		}
		out = append(out, Line{{Text: s}})
	}
	return trimTrailingEmpty(out), nil
}

// trimTrailingEmpty drops the empty line left by a final newline.
func trimTrailingEmpty(lines []Line) []Line {
	for len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}
