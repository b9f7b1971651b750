package ui

import (
	"time"
)

func (a *App) updateConnectionStatus() {
	if a.connectionView == nil {
		return
	}
	if a.channel != nil && a.channel.IsConnected() {
		a.connectionView.SetText("[green]● Live updates connected[-]")
	} else {
		a.connectionView.SetText("[red]○ Live updates disconnected[-]")
	}
}

func (a *App) startStatusTicker() {
	if a.statusTicker != nil {
		return
	}
	a.statusTickerDone = make(chan struct{})
	a.statusTicker = time.NewTicker(1 * time.Second)
	go func() {
		for {
			select {
			case <-a.statusTickerDone:
				return
			case <-a.statusTicker.C:
				a.app.QueueUpdateDraw(func() {
					a.updateConnectionStatus()
				})
			}
		}
	}()
}

func (a *App) stopStatusTicker() {
	if a.statusTicker != nil {
		a.statusTicker.Stop()
		close(a.statusTickerDone)
		a.statusTicker = nil
	}
}
