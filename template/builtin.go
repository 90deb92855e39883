package template

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/ByLCY/slidepress/errs"
)

//go:embed standard.deck
var standardDeck []byte

var (
	builtinOnce sync.Once
	builtinTpl  *Template
	builtinErr  error
)

// Builtin 返回内置模板，进程内只编译一次。
func Builtin() (*Template, error) {
	builtinOnce.Do(func() {
		builtinTpl, builtinErr = Parse(bytes.NewReader(standardDeck))
	})
	return builtinTpl, builtinErr
}

// Source 为一个模板来源（文件路径或内置模板），首次 Load 时加载，之后复用结果。
type Source struct {
	path string
	once sync.Once
	tpl  *Template
	err  error
}

// NewSource 创建模板来源；path 为空时使用内置模板。
func NewSource(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Path() string { return s.path }

func (s *Source) Load() (*Template, error) {
	s.once.Do(func() {
		if s.path == "" {
			s.tpl, s.err = Builtin()
			return
		}
		f, err := os.Open(s.path)
		if err != nil {
			s.err = errs.NewTemplate(fmt.Sprintf("无法读取模板 %s", s.path), err)
			return
		}
		defer f.Close()
		s.tpl, s.err = Parse(f)
	})
	return s.tpl, s.err
}
