package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = ` _ __ ___ | |_
| '_ ` + "`" + ` _ \| __|
| | | | | | |_
|_| |_| |_|\__|`

// Banner는 프로세스당 한 번만 배너를 stderr에 출력한다.
func (p *Printer) Banner(subtitle string) {
	if p.bannerShown {
		return
	}
	p.bannerShown = true
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Theme.Border).
		Padding(0, 2)
	art := lipgloss.NewStyle().Foreground(p.Theme.Accent).Bold(true).Render(bannerArt)
	sub := lipgloss.NewStyle().Foreground(p.Theme.Muted).Render(subtitle)
	fmt.Fprintln(p.Err, box.Render(art+"\n"+sub))
}

// BannerShown은 이미 배너를 출력했는지 반환한다.
func (p *Printer) BannerShown() bool {
	return p.bannerShown
}
