package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"oneclip/pkg/types"
)

func newPickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Interactively pick a history entry to paste",
		Long:  `Opens a terminal picker over the daemon's history. Enter copies the selected entry back to the clipboard.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			picker, err := newPicker(newAPIClient(cfg.Port()))
			if err != nil {
				return err
			}
			return picker.Run()
		},
	}
	addConfigFlag(cmd)
	return cmd
}

type picker struct {
	client     *apiClient
	screen     tcell.Screen
	entries    []types.Entry
	selected   int
	offset     int
	searchMode bool
	searchText string
}

func newPicker(client *apiClient) (*picker, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorReset).
		Foreground(tcell.ColorReset))

	return &picker{
		client: client,
		screen: screen,
	}, nil
}

func (p *picker) Run() error {
	defer p.screen.Fini()

	if err := p.loadEntries(""); err != nil {
		return err
	}

	for {
		p.draw()

		switch ev := p.screen.PollEvent().(type) {
		case *tcell.EventResize:
			p.screen.Sync()
		case *tcell.EventKey:
			if p.searchMode {
				switch ev.Key() {
				case tcell.KeyEscape:
					p.searchMode = false
					p.searchText = ""
					if err := p.loadEntries(""); err != nil {
						return err
					}
				case tcell.KeyEnter:
					p.searchMode = false
					if err := p.loadEntries(p.searchText); err != nil {
						return err
					}
				case tcell.KeyBackspace, tcell.KeyBackspace2:
					if len(p.searchText) > 0 {
						p.searchText = p.searchText[:len(p.searchText)-1]
					}
				case tcell.KeyRune:
					p.searchText += string(ev.Rune())
				}
				continue
			}

			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyUp, tcell.KeyCtrlP:
				p.moveSelection(-1)
			case tcell.KeyDown, tcell.KeyCtrlN:
				p.moveSelection(1)
			case tcell.KeyHome, tcell.KeyCtrlA:
				p.selected = 0
			case tcell.KeyEnd, tcell.KeyCtrlE:
				p.selected = len(p.entries) - 1
			case tcell.KeyPgUp:
				p.moveSelection(-10)
			case tcell.KeyPgDn:
				p.moveSelection(10)
			case tcell.KeyEnter, tcell.KeyCtrlV:
				if len(p.entries) > 0 {
					return p.pasteSelected()
				}
			case tcell.KeyRune:
				switch ev.Rune() {
				case 'j':
					p.moveSelection(1)
				case 'k':
					p.moveSelection(-1)
				case 'g':
					p.selected = 0
				case 'G':
					p.selected = len(p.entries) - 1
				case '/':
					p.searchMode = true
					p.searchText = ""
				case 'q':
					return nil
				}
			}
		}
	}
}

func (p *picker) loadEntries(query string) error {
	var (
		entries []types.Entry
		err     error
	)
	if query == "" {
		entries, err = p.client.History(0)
	} else {
		entries, err = p.client.Search(query, 100)
	}
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	p.entries = entries
	p.selected = 0
	p.offset = 0
	return nil
}

// pasteSelected resolves the picker row back to a history index. After a
// search the row number no longer matches the history position, so the
// entry's ID is located in the full history first.
func (p *picker) pasteSelected() error {
	selected := p.entries[p.selected]
	p.screen.Fini()

	history, err := p.client.History(0)
	if err != nil {
		return err
	}
	for i, entry := range history {
		if entry.ID == selected.ID {
			return p.client.Paste(i)
		}
	}
	return fmt.Errorf("entry no longer in history")
}

func (p *picker) moveSelection(delta int) {
	p.selected += delta
	if p.selected < 0 {
		p.selected = 0
	}
	if p.selected >= len(p.entries) {
		p.selected = len(p.entries) - 1
	}

	_, height := p.screen.Size()
	visibleHeight := height - 5

	if p.selected-p.offset >= visibleHeight {
		p.offset = p.selected - visibleHeight + 1
	} else if p.selected < p.offset {
		p.offset = p.selected
	}
}

func (p *picker) draw() {
	p.screen.Clear()
	width, height := p.screen.Size()

	headerStyle := tcell.StyleDefault.Reverse(true)
	drawStringCenter(p.screen, 0, " Clipboard History ", headerStyle)

	helpStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	help := "↑/k:Up  ↓/j:Down  Enter:Paste  g/G:Top/Bottom  /:Search  Esc/q:Quit"
	drawStringCenter(p.screen, 1, help, helpStyle)

	if p.searchMode {
		searchStyle := tcell.StyleDefault.Reverse(true)
		drawString(p.screen, 0, 2, fmt.Sprintf(" Search: %s█", p.searchText), searchStyle)
	} else {
		drawString(p.screen, 0, 2, strings.Repeat("─", width), tcell.StyleDefault)
	}

	visibleHeight := height - 5
	endIdx := p.offset + visibleHeight
	if endIdx > len(p.entries) {
		endIdx = len(p.entries)
	}

	for i, entry := range p.entries[p.offset:endIdx] {
		y := i + 3
		style := tcell.StyleDefault
		if i+p.offset == p.selected {
			style = style.Reverse(true)
		}

		fav := " "
		if entry.IsFavorite {
			fav = "*"
		}
		content := preview(entry.Content, width-26)
		line := fmt.Sprintf(" %s %-6s %-12s %s",
			fav, entry.Type, fmtAge(entry.Timestamp), content)
		drawString(p.screen, 0, y, line, style)
	}

	if len(p.entries) > 0 {
		status := fmt.Sprintf(" %d/%d ", p.selected+1, len(p.entries))
		drawString(p.screen, width-len(status), height-1, status, tcell.StyleDefault)
	}

	p.screen.Show()
}

func drawString(s tcell.Screen, x, y int, str string, style tcell.Style) {
	for i, r := range str {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func drawStringCenter(s tcell.Screen, y int, str string, style tcell.Style) {
	w, _ := s.Size()
	x := (w - len(str)) / 2
	if x < 0 {
		x = 0
	}
	drawString(s, x, y, str, style)
}
