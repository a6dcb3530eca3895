package standalone

import (
	"image"
	"testing"
	"time"
)

func TestStatusInfoString(t *testing.T) {
	tests := []struct {
		name string
		info StatusInfo
		want string
	}{
		{
			name: "local renderer",
			info: StatusInfo{Renderer: "SDL_Hardware", Ready: true, TPS: 99.6, Guest: image.Pt(640, 480), Viewers: -1},
			want: "SDL_Hardware | 640x480 | 100 steps/s",
		},
		{
			name: "remote without viewers",
			info: StatusInfo{Renderer: "VNC", Ready: true, Paused: true, Viewers: 0},
			want: "VNC | 0 viewers | paused | 0 steps/s",
		},
		{
			name: "remote with one viewer",
			info: StatusInfo{Renderer: "VNC", Ready: true, TPS: 100, Viewers: 1},
			want: "VNC | 1 viewer | 100 steps/s",
		},
		{
			name: "failed renderer",
			info: StatusInfo{Renderer: "SDL_OpenGL", Viewers: -1},
			want: "SDL_OpenGL | not ready | 0 steps/s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotification_Expiry(t *testing.T) {
	now := time.Unix(1000, 0)
	n := NewNotification()
	n.now = func() time.Time { return now }

	if n.IsVisible() {
		t.Fatal("new notification should be hidden")
	}

	n.ShowDefault("Renderer: SDL_Software")
	if got := n.Message(); got != "Renderer: SDL_Software" {
		t.Errorf("Message = %q", got)
	}

	now = now.Add(2999 * time.Millisecond)
	if !n.IsVisible() {
		t.Error("hidden before the duration elapsed")
	}

	now = now.Add(time.Millisecond)
	if n.IsVisible() {
		t.Error("still visible after the duration elapsed")
	}

	n.Show("again", time.Minute)
	n.Clear()
	if n.IsVisible() {
		t.Error("visible after Clear")
	}
}
