//go:build mage

// Package main 提供 slidepress 的 Mage 构建目标。
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "slidepress"
)

// Default 为不带参数运行 mage 时的目标。
var Default = Build

// Build 编译命令行到 bin/。
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, "."); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Vet 运行 go vet。
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test 运行全部测试。
func Test() error {
	mg.Deps(Vet)
	return sh.RunV("go", "test", "-race", "./...")
}

// Golden 重新生成 describe 的 golden 文件。
func Golden() error {
	return sh.RunV("go", "test", "./deck", "-run", "Golden", "-update")
}

// Sample 转换 testdata 中的示例文档，输出到 bin/sample.pdf。
func Sample() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "convert",
		"--in", "deck/testdata/describe.md",
		"--out", filepath.Join(binDir, "sample.pdf"),
		"--handout", filepath.Join(binDir, "sample.docx"),
	)
}

// Clean 删除构建产物。
func Clean() error {
	return sh.Rm(binDir)
}
