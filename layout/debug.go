package layout

import (
	"encoding/json"
	"io"
	"os"
)

// EncodeDebugJSON 将幻灯片模型（不含已解码的图片）编码为缩进 JSON。
func EncodeDebugJSON(deck *Deck, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(deck)
}

// WriteDebugJSON 将幻灯片模型输出到文件，便于调试或可视化。
func WriteDebugJSON(deck *Deck, path string) error {
	if deck == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(deck, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
