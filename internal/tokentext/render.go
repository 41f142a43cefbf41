package tokentext

// Intent actions a rendered token widget can request. Performing the
// action (opening a viewer, toggling playback, launching a map) is the
// caller's responsibility; the projector only describes it.
const (
	ActionOpenImage   = "open-image"
	ActionToggleAudio = "toggle-audio"
	ActionOpenMap     = "open-map"
	ActionOpenDetail  = "open-detail"
	ActionOpenMusic   = "open-music"
)

// RenderKind discriminates RenderItem variants.
type RenderKind string

const (
	RenderText   RenderKind = "text"
	RenderWidget RenderKind = "widget"
)

// Intent is the click action a widget carries: what to do and with which
// payload.
type Intent struct {
	Action  string `json:"action"`
	Payload string `json:"payload"`
}

// RenderItem is one drawable element: either literal text or an
// interactive widget descriptor standing in for a token.
type RenderItem struct {
	Kind   RenderKind `json:"kind"`
	Text   string     `json:"text,omitempty"`
	Token  *Token     `json:"token,omitempty"`
	Icon   string     `json:"icon,omitempty"`
	Intent *Intent    `json:"intent,omitempty"`
}

// ActiveState is transient UI state supplied by the caller per projection.
// It is never stored by the model; it only influences which icon a widget
// shows (a playing audio token renders a pause icon).
type ActiveState struct {
	// PlayingAudio is the payload of the AUD token currently playing,
	// or empty when nothing plays.
	PlayingAudio string
}

// Project maps a segment sequence to drawable items. Literal text passes
// through untouched; each token becomes a widget descriptor with an icon
// and a click intent. The projection never mutates the document and never
// performs the described actions itself.
func Project(segs []Segment, active ActiveState) []RenderItem {
	out := make([]RenderItem, 0, len(segs))
	for _, seg := range segs {
		if !seg.IsToken {
			out = append(out, RenderItem{Kind: RenderText, Text: seg.Text})
			continue
		}
		t := seg.Token
		out = append(out, RenderItem{
			Kind:  RenderWidget,
			Token: &t,
			Icon:  widgetIcon(t, active),
			Intent: &Intent{
				Action:  widgetAction(t.Type),
				Payload: t.Payload,
			},
		})
	}
	return out
}

func widgetIcon(t Token, active ActiveState) string {
	switch t.Type {
	case TokenImage:
		return "image"
	case TokenAudio:
		if active.PlayingAudio != "" && active.PlayingAudio == t.Payload {
			return "pause"
		}
		return "play"
	case TokenMap:
		return "map-pin"
	case TokenDetail:
		return "tag"
	case TokenMusic:
		return "music"
	}
	return "unknown"
}

func widgetAction(typ TokenType) string {
	switch typ {
	case TokenImage:
		return ActionOpenImage
	case TokenAudio:
		return ActionToggleAudio
	case TokenMap:
		return ActionOpenMap
	case TokenDetail:
		return ActionOpenDetail
	case TokenMusic:
		return ActionOpenMusic
	}
	return ""
}
