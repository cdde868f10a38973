package tui

import (
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/vt"
	"github.com/creack/pty"
)

// viewerTickMsg triggers a re-render of the article viewer.
type viewerTickMsg struct{}

// viewerExitMsg signals that the viewer process has exited.
type viewerExitMsg struct{ err error }

// viewerTick ticks at ~30fps while an article is on screen.
func viewerTick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(time.Time) tea.Msg {
		return viewerTickMsg{}
	})
}

// ArticleViewer displays an article by running a text browser inside an
// embedded virtual terminal (charmbracelet/x/vt) backed by a PTY.
type ArticleViewer struct {
	url      string
	emulator *vt.Emulator
	ptmx     *os.File // PTY master
	cmd      *exec.Cmd
	width    int
	height   int
	focused  bool

	mu      sync.Mutex // guards done and exitErr
	done    bool
	exitErr error
}

// NewArticleViewer starts cmd in a w×h PTY showing url. The returned command
// begins the render ticks, or reports the start failure as an exit.
func NewArticleViewer(url string, w, h int, cmd *exec.Cmd) (*ArticleViewer, tea.Cmd) {
	v := &ArticleViewer{
		url:      url,
		emulator: vt.NewEmulator(w, h),
		cmd:      cmd,
		width:    w,
		height:   h,
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(h),
		Cols: uint16(w),
	})
	if err != nil {
		v.done = true
		v.exitErr = err
		return v, func() tea.Msg { return viewerExitMsg{err: err} }
	}
	v.ptmx = ptmx

	go func() {
		_, _ = io.Copy(v.emulator, ptmx)
		waitErr := cmd.Wait()
		v.mu.Lock()
		v.done = true
		v.exitErr = waitErr
		v.mu.Unlock()
	}()

	return v, viewerTick()
}

// Update forwards keys to the browser when focused and polls for exit on
// every tick.
func (v *ArticleViewer) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.focused && v.ptmx != nil {
			if b := encodeKey(msg); len(b) > 0 {
				_, _ = v.ptmx.Write(b)
			}
		}
		return nil

	case viewerTickMsg:
		if v.Done() {
			return func() tea.Msg { return viewerExitMsg{err: v.ExitErr()} }
		}
		return viewerTick()
	}
	return nil
}

// View renders the emulator screen.
func (v *ArticleViewer) View() string {
	return v.emulator.Render()
}

// URL returns the article being shown.
func (v *ArticleViewer) URL() string { return v.url }

// Focus routes key presses to the browser.
func (v *ArticleViewer) Focus() { v.focused = true }

// Blur stops routing key presses to the browser.
func (v *ArticleViewer) Blur() { v.focused = false }

// Resize resizes the emulator and the PTY.
func (v *ArticleViewer) Resize(w, h int) {
	v.width = w
	v.height = h
	v.emulator.Resize(w, h)
	if v.ptmx != nil {
		_ = pty.Setsize(v.ptmx, &pty.Winsize{
			Rows: uint16(h),
			Cols: uint16(w),
		})
	}
}

// Close kills the browser and releases the PTY.
func (v *ArticleViewer) Close() {
	if v.cmd != nil && v.cmd.Process != nil {
		_ = v.cmd.Process.Kill()
	}
	if v.ptmx != nil {
		_ = v.ptmx.Close()
	}
}

// Done reports whether the browser has exited.
func (v *ArticleViewer) Done() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.done
}

// ExitErr returns the browser's exit error, if any.
func (v *ArticleViewer) ExitErr() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.exitErr
}

// keySequences maps named keys to their xterm escape sequences.
var keySequences = map[string]string{
	"enter":     "\r",
	"backspace": "\x7f",
	"tab":       "\t",
	"shift+tab": "\x1b[Z",
	"space":     " ",
	" ":         " ",
	"esc":       "\x1b",
	"up":        "\x1b[A",
	"down":      "\x1b[B",
	"right":     "\x1b[C",
	"left":      "\x1b[D",
	"home":      "\x1b[H",
	"end":       "\x1b[F",
	"pgup":      "\x1b[5~",
	"pgdown":    "\x1b[6~",
	"insert":    "\x1b[2~",
	"delete":    "\x1b[3~",
	"f1":        "\x1bOP",
	"f2":        "\x1bOQ",
	"f3":        "\x1bOR",
	"f4":        "\x1bOS",
	"f5":        "\x1b[15~",
	"f6":        "\x1b[17~",
	"f7":        "\x1b[18~",
	"f8":        "\x1b[19~",
	"f9":        "\x1b[20~",
	"f10":       "\x1b[21~",
	"f11":       "\x1b[23~",
	"f12":       "\x1b[24~",
}

// encodeKey converts a key press into the bytes a terminal would send for it.
// Alt with a printable key is sent as ESC followed by the key.
func encodeKey(msg tea.KeyMsg) []byte {
	var seq string
	switch s := msg.String(); {
	case msg.Type == tea.KeyRunes:
		seq = string(msg.Runes)
	case keySequences[s] != "":
		seq = keySequences[s]
	case strings.HasPrefix(s, "ctrl+") && len(s) == len("ctrl+a") && s[5] >= 'a' && s[5] <= 'z':
		seq = string(rune(s[5] - 'a' + 1))
	default:
		return nil
	}
	if msg.Alt && msg.Type == tea.KeyRunes {
		seq = "\x1b" + seq
	}
	return []byte(seq)
}
