package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix 为环境变量前缀，例如 SLIDEPRESS_FIT_MIN_FONT_PT。
const EnvPrefix = "SLIDEPRESS"

// SetDefaults 将 Default() 的值注册到 viper，保证环境变量能覆盖未出现在配置文件中的键。
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("fit.min_font_pt", d.Fit.MinFontPt)
	v.SetDefault("fit.max_font_pt", d.Fit.MaxFontPt)
	v.SetDefault("fit.line_spacing", d.Fit.LineSpacing)
	v.SetDefault("fit.char_width_factor", d.Fit.CharWidthFactor)
	v.SetDefault("fit.measure", d.Fit.Measure)

	v.SetDefault("segment.max_list_items_per_slide", d.Segment.MaxListItemsPerSlide)
	v.SetDefault("segment.max_table_rows_per_slide", d.Segment.MaxTableRowsPerSlide)
	v.SetDefault("segment.max_images_per_slide", d.Segment.MaxImagesPerSlide)
	v.SetDefault("segment.strip_numbering", d.Segment.StripNumbering)
	v.SetDefault("segment.toc", d.Segment.TOC)
	v.SetDefault("segment.toc_title", d.Segment.TOCTitle)
	v.SetDefault("segment.chapter_dividers", d.Segment.ChapterDividers)
	v.SetDefault("segment.closing_title", d.Segment.ClosingTitle)

	v.SetDefault("assets.base_dir", d.Assets.BaseDir)
	v.SetDefault("assets.timeout", d.Assets.Timeout)
	v.SetDefault("assets.allow_remote", d.Assets.AllowRemote)
	v.SetDefault("assets.max_bytes", d.Assets.MaxBytes)

	v.SetDefault("workers", d.Workers)
	v.SetDefault("template", d.Template)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.api_key", d.Server.APIKey)
	v.SetDefault("server.jwt_secret", d.Server.JWTSecret)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.public_url", d.Server.PublicURL)

	v.SetDefault("mcp.transport", d.MCP.Transport)
	v.SetDefault("mcp.addr", d.MCP.Addr)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("store.redis_addr", d.Store.RedisAddr)
	v.SetDefault("store.redis_password", d.Store.RedisPassword)
	v.SetDefault("store.redis_db", d.Store.RedisDB)
	v.SetDefault("store.ttl", d.Store.TTL)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// BindEnv 打开自动环境变量映射，键中的 "." 映射为 "_"。
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load 从 viper 读取配置并校验。
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: 解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
