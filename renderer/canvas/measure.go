package canvasrenderer

import (
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/slidepress/fit"
	"github.com/ByLCY/slidepress/template"
)

// Measurer 以真实字体度量实现 fit.Measurer，按字号缓存字体面。
type Measurer struct {
	family *canvas.FontFamily

	mu    sync.Mutex
	faces map[float64]*canvas.FontFace
}

var _ fit.Measurer = (*Measurer)(nil)

// NewMeasurer 以模板中的 font 创建度量器。
func (r *Renderer) NewMeasurer(font template.Font) (*Measurer, error) {
	family, err := r.family(font.Src)
	if err != nil {
		return nil, err
	}
	return &Measurer{family: family, faces: map[float64]*canvas.FontFace{}}, nil
}

// Width 返回 text 在 size（pt）下的宽度（pt）。
func (m *Measurer) Width(text string, size float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	face, ok := m.faces[size]
	if !ok {
		face = m.family.Face(size, canvas.Black, canvas.FontRegular, canvas.FontNormal)
		m.faces[size] = face
	}
	return face.TextWidth(text) * template.MmToPt
}
