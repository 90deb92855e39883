// Package config 定义转换引擎与外围服务的配置及其默认值。
package config

import (
	"strings"
	"time"

	"github.com/ByLCY/slidepress/errs"
)

// Config 是进程级配置。核心引擎只读取 Fit、Segment、Assets 与 Workers。
type Config struct {
	Fit      FitConfig     `mapstructure:"fit" yaml:"fit"`
	Segment  SegmentConfig `mapstructure:"segment" yaml:"segment"`
	Assets   AssetsConfig  `mapstructure:"assets" yaml:"assets"`
	Workers  int           `mapstructure:"workers" yaml:"workers"`
	Template string        `mapstructure:"template" yaml:"template"` // 模板路径，空为内置模板
	Server   ServerConfig  `mapstructure:"server" yaml:"server"`
	MCP      MCPConfig     `mapstructure:"mcp" yaml:"mcp"`
	Store    StoreConfig   `mapstructure:"store" yaml:"store"`
	Log      LogConfig     `mapstructure:"log" yaml:"log"`
}

// FitConfig 控制字号搜索。
type FitConfig struct {
	MinFontPt       int     `mapstructure:"min_font_pt" yaml:"min_font_pt"`
	MaxFontPt       int     `mapstructure:"max_font_pt" yaml:"max_font_pt"`
	LineSpacing     float64 `mapstructure:"line_spacing" yaml:"line_spacing"`
	CharWidthFactor float64 `mapstructure:"char_width_factor" yaml:"char_width_factor"`
	// Measure 选择行宽估算方式：estimate（字符数 × 系数）或 font（模板字体度量）。
	Measure string `mapstructure:"measure" yaml:"measure"`
}

// SegmentConfig 控制分页容量以及封面、目录等结构页。
type SegmentConfig struct {
	MaxListItemsPerSlide int    `mapstructure:"max_list_items_per_slide" yaml:"max_list_items_per_slide"`
	MaxTableRowsPerSlide int    `mapstructure:"max_table_rows_per_slide" yaml:"max_table_rows_per_slide"`
	MaxImagesPerSlide    int    `mapstructure:"max_images_per_slide" yaml:"max_images_per_slide"`
	StripNumbering       bool   `mapstructure:"strip_numbering" yaml:"strip_numbering"`
	TOC                  bool   `mapstructure:"toc" yaml:"toc"`
	TOCTitle             string `mapstructure:"toc_title" yaml:"toc_title"`
	ChapterDividers      bool   `mapstructure:"chapter_dividers" yaml:"chapter_dividers"`
	ClosingTitle         string `mapstructure:"closing_title" yaml:"closing_title"`
}

// AssetsConfig 控制图片加载。
type AssetsConfig struct {
	BaseDir     string        `mapstructure:"base_dir" yaml:"base_dir"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	AllowRemote bool          `mapstructure:"allow_remote" yaml:"allow_remote"`
	MaxBytes    int64         `mapstructure:"max_bytes" yaml:"max_bytes"`
}

type ServerConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	APIKey       string `mapstructure:"api_key" yaml:"api_key"`
	JWTSecret    string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	PublicURL    string `mapstructure:"public_url" yaml:"public_url"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"` // stdio | sse
	Addr      string `mapstructure:"addr" yaml:"addr"`
}

// StoreConfig 选择制品存储后端：memory、file、sqlite、redis。
type StoreConfig struct {
	Driver        string        `mapstructure:"driver" yaml:"driver"`
	Dir           string        `mapstructure:"dir" yaml:"dir"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default 返回带显式默认值的配置。
func Default() Config {
	return Config{
		Fit: FitConfig{
			MinFontPt:       12,
			MaxFontPt:       44,
			LineSpacing:     1.2,
			CharWidthFactor: 0.5,
			Measure:         "estimate",
		},
		Segment: SegmentConfig{
			MaxListItemsPerSlide: 8,
			MaxTableRowsPerSlide: 10,
			MaxImagesPerSlide:    3,
			StripNumbering:       true,
			TOCTitle:             "Contents",
		},
		Assets: AssetsConfig{
			Timeout:  10 * time.Second,
			MaxBytes: 20 << 20,
		},
		Workers: 4,
		Server: ServerConfig{
			Addr:         ":8099",
			MaxBodyBytes: 4 << 20,
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Addr:      ":8098",
		},
		Store: StoreConfig{
			Driver: "file",
			Dir:    "output",
			TTL:    7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate 校验配置，失败返回 CONFIG_INVALID 错误。
func (c Config) Validate() error {
	f := c.Fit
	switch {
	case f.MinFontPt <= 0:
		return errs.NewConfig("fit.min_font_pt", "must be positive")
	case f.MaxFontPt <= 0:
		return errs.NewConfig("fit.max_font_pt", "must be positive")
	case f.MinFontPt > f.MaxFontPt:
		return errs.NewConfig("fit.min_font_pt", "must not exceed fit.max_font_pt")
	case f.LineSpacing <= 0:
		return errs.NewConfig("fit.line_spacing", "must be positive")
	case f.CharWidthFactor <= 0:
		return errs.NewConfig("fit.char_width_factor", "must be positive")
	}
	switch strings.ToLower(f.Measure) {
	case "", "estimate", "font":
	default:
		return errs.NewConfig("fit.measure", "must be estimate or font")
	}
	s := c.Segment
	switch {
	case s.MaxListItemsPerSlide <= 0:
		return errs.NewConfig("segment.max_list_items_per_slide", "must be positive")
	case s.MaxTableRowsPerSlide <= 0:
		return errs.NewConfig("segment.max_table_rows_per_slide", "must be positive")
	case s.MaxImagesPerSlide <= 0:
		return errs.NewConfig("segment.max_images_per_slide", "must be positive")
	}
	if c.Workers < 0 {
		return errs.NewConfig("workers", "must not be negative")
	}
	if c.Assets.Timeout < 0 {
		return errs.NewConfig("assets.timeout", "must not be negative")
	}
	switch strings.ToLower(c.Store.Driver) {
	case "", "memory", "file", "sqlite", "redis":
	default:
		return errs.NewConfig("store.driver", "must be one of memory, file, sqlite, redis")
	}
	switch strings.ToLower(c.MCP.Transport) {
	case "", "stdio", "sse":
	default:
		return errs.NewConfig("mcp.transport", "must be stdio or sse")
	}
	return nil
}
