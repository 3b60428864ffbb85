package tui

import (
	lip "github.com/charmbracelet/lipgloss"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

var (
	xStyle       = lip.NewStyle().Foreground(lip.Color("#8BE9FD"))
	oStyle       = lip.NewStyle().Foreground(lip.Color("#FF79C6"))
	cellStyle    = lip.NewStyle().Foreground(lip.Color("#BD93F9"))
	disabledCell = lip.NewStyle().Foreground(lip.Color("#44475A"))
	winStyle     = lip.NewStyle().Foreground(lip.Color("#50FA7B")).Bold(true)
	cursorStyle  = lip.NewStyle().Background(lip.Color("#44475A")).Foreground(lip.Color("#F8F8F2")).Bold(true)
	headerStyle  = lip.NewStyle().Foreground(lip.Color("#F1FA8C")).Bold(true)
	statusStyle  = lip.NewStyle().Foreground(lip.Color("#FFB86C")).Bold(true)
	footerStyle  = lip.NewStyle().Foreground(lip.Color("#6272A4"))
)

func markStyle(mark entity.Mark) lip.Style {
	switch mark {
	case entity.PlayerX:
		return xStyle
	case entity.PlayerO:
		return oStyle
	default:
		return cellStyle
	}
}
