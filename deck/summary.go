package deck

import (
	"encoding/json"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/ByLCY/slidepress/layout"
)

// Summary 描述一页幻灯片的结构，不含几何信息。
type Summary struct {
	Index        int           `json:"index" yaml:"index"`
	Role         layout.Role   `json:"role" yaml:"role"`
	Title        string        `json:"title,omitempty" yaml:"title,omitempty"`
	Layout       string        `json:"layout" yaml:"layout"`
	Blocks       layout.Counts `json:"blocks" yaml:"blocks"`
	FontSize     int           `json:"fontSize" yaml:"fontSize"`
	Continuation bool          `json:"continuation,omitempty" yaml:"continuation,omitempty"`
}

func summarize(u layout.Unit) Summary {
	return Summary{
		Index:        u.Index,
		Role:         u.Role,
		Title:        u.Title,
		Layout:       u.Layout,
		Blocks:       layout.Count(u.Blocks),
		FontSize:     u.FontSize,
		Continuation: u.Continuation,
	}
}

// WriteYAML 以 YAML 输出摘要，用于命令行与 golden 文件。
func WriteYAML(w io.Writer, summaries []Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(summaries); err != nil {
		return err
	}
	return enc.Close()
}

// WriteJSON 以缩进 JSON 输出摘要。
func WriteJSON(w io.Writer, summaries []Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
