package util

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

// 定义颜色常量
const (
	ColorReset  = "\x1b[0m"
	ColorRed    = "\x1b[1;31m"
	ColorGreen  = "\x1b[1;32m"
	ColorYellow = "\x1b[1;33m"
	ColorBlue   = "\x1b[1;34m"
	ColorCyan   = "\x1b[1;36m"
)

var colors = map[string]string{
	"ColorRed":    ColorRed,
	"ColorGreen":  ColorGreen,
	"ColorYellow": ColorYellow,
	"ColorBlue":   ColorBlue,
	"ColorCyan":   ColorCyan,
}

// PrintBanner 以统一颜色输出 ASCII banner，未知颜色名不着色
func PrintBanner(w io.Writer, text string, color string) {
	ansiColor, ok := colors[color]
	if !ok {
		ansiColor = ColorReset
	}
	for _, line := range figure.NewFigure(text, "", true).Slicify() {
		fmt.Fprintln(w, ansiColor+line+ColorReset)
	}
}
