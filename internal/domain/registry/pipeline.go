package registry

import (
	"strings"
)

// ParsePipeline splits a shell command line into pipeline stages.
//
// Words are separated by unquoted blanks and stages by unquoted '|'.
// Single quotes preserve their contents literally. Inside double quotes a
// backslash only escapes '\\', '"', '$' and '`'. Outside quotes a backslash
// escapes the following byte.
//
// Redirection, command lists, substitutions and parameter expansion are not
// supported; their unquoted operators are rejected with a *SyntaxError.
func ParsePipeline(invocation string) ([]Stage, error) {
	p := &pipelineParser{src: invocation}
	return p.parse()
}

type pipelineParser struct {
	src    string
	stages []Stage
	words  []string
	word   strings.Builder
	inWord bool
}

func (p *pipelineParser) fail(offset int, msg string) error {
	return &SyntaxError{Invocation: p.src, Offset: offset, Msg: msg}
}

func (p *pipelineParser) parse() ([]Stage, error) {
	src := p.src
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case ' ', '\t', '\n', '\r':
			p.endWord()
		case '|':
			if err := p.endStage(i); err != nil {
				return nil, err
			}
		case '\'':
			end := strings.IndexByte(src[i+1:], '\'')
			if end < 0 {
				return nil, p.fail(i, "unterminated single quote")
			}
			p.word.WriteString(src[i+1 : i+1+end])
			p.inWord = true
			i += end + 1
		case '"':
			next, err := p.doubleQuoted(i)
			if err != nil {
				return nil, err
			}
			i = next
		case '\\':
			if i+1 >= len(src) {
				return nil, p.fail(i, "trailing backslash")
			}
			p.word.WriteByte(src[i+1])
			p.inWord = true
			i++
		case ';', '&', '<', '>', '(', ')', '`', '$':
			return nil, p.fail(i, "unsupported shell operator "+string(c))
		default:
			p.word.WriteByte(c)
			p.inWord = true
		}
	}
	if err := p.endStage(len(src)); err != nil {
		return nil, err
	}
	return p.stages, nil
}

// doubleQuoted consumes a double-quoted section starting at the opening quote
// and returns the offset of the closing quote.
func (p *pipelineParser) doubleQuoted(start int) (int, error) {
	src := p.src
	p.inWord = true
	for j := start + 1; j < len(src); j++ {
		switch c := src[j]; c {
		case '"':
			return j, nil
		case '\\':
			if j+1 < len(src) && strings.IndexByte("\\\"$`", src[j+1]) >= 0 {
				p.word.WriteByte(src[j+1])
				j++
				continue
			}
			p.word.WriteByte(c)
		case '$', '`':
			return 0, p.fail(j, "unsupported expansion "+string(c))
		default:
			p.word.WriteByte(c)
		}
	}
	return 0, p.fail(start, "unterminated double quote")
}

func (p *pipelineParser) endWord() {
	if !p.inWord {
		return
	}
	p.words = append(p.words, p.word.String())
	p.word.Reset()
	p.inWord = false
}

func (p *pipelineParser) endStage(offset int) error {
	p.endWord()
	if len(p.words) == 0 {
		return p.fail(offset, "empty pipeline stage")
	}
	p.stages = append(p.stages, NewStage(p.words[0], p.words[1:]...))
	p.words = nil
	return nil
}

// FormatPipeline renders stages as a command line that ParsePipeline reads back
// into the same stages.
func FormatPipeline(stages []Stage) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, " | ")
}

// Quote returns word unchanged when it only contains shell-safe bytes and
// single-quotes it otherwise.
func Quote(word string) string {
	if word == "" {
		return "''"
	}
	safe := true
	for i := 0; i < len(word); i++ {
		if !isSafeByte(word[i]) {
			safe = false
			break
		}
	}
	if safe {
		return word
	}
	return "'" + strings.ReplaceAll(word, "'", `'\''`) + "'"
}

func isSafeByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("_-./=:,+@%^", c) >= 0
}
