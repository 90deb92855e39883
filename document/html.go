package document

import (
	"strings"

	"golang.org/x/net/html"
)

type htmlImage struct {
	src string
	alt string
}

// scanHTML 提取原始 HTML 片段中的 <img> 与纯文本。unsupported 表示片段含有 img/br 以外的标签。
func scanHTML(raw string) (imgs []htmlImage, txt string, unsupported bool) {
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return imgs, b.String(), unsupported
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "img":
				var img htmlImage
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					switch string(key) {
					case "src":
						img.src = string(val)
					case "alt":
						img.alt = string(val)
					}
				}
				if img.src != "" {
					imgs = append(imgs, img)
				}
			case "br":
				b.WriteByte('\n')
			default:
				unsupported = true
			}
		}
	}
}
