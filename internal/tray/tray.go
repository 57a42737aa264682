// Package tray shows the system tray icon and its menu.
package tray

import (
	"log"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

// Actions are the callbacks behind the menu items.
type Actions struct {
	ResetAddress func()
	Shutdown     func()
}

// Tray manages the system tray icon and menu
type Tray struct {
	url          string
	actions      Actions
	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuReset    *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New creates a tray whose "Open console" item opens url.
func New(url string, actions Actions) *Tray {
	return &Tray{
		url:     url,
		actions: actions,
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.onExit()
	})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	t.shuttingDown.Store(true)
	systray.Quit()
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("padlink")
	systray.SetTooltip("padlink - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open console", "Open web console")
	t.menuReset = systray.AddMenuItem("Reset address", "Forget the UDP endpoint")
	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit padlink")

	// Handle menu clicks in separate goroutines to prevent blocking
	go t.handleMenuClicks()

	log.Println("System tray initialized")
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				openBrowser(t.url)
			}
		case <-t.menuReset.ClickedCh:
			if !t.shuttingDown.Load() && t.actions.ResetAddress != nil {
				t.actions.ResetAddress()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				if t.actions.Shutdown != nil {
					t.once.Do(t.actions.Shutdown)
				}
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	log.Println("System tray exiting")
}

// browserCommand returns the command that opens url on goos.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

func openBrowser(url string) {
	name, args := browserCommand(runtime.GOOS, url)
	if err := exec.Command(name, args...).Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
