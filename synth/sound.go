package synth

// Omni matches every channel
const Omni = 0

// Sound describes which notes and channels a synth responds to
type Sound struct {
	Channel  int // Omni or 1-16
	LowNote  int
	HighNote int
}

// AnySound plays any note on any channel
func AnySound() Sound {
	return Sound{
		Channel:  Omni,
		LowNote:  -1 << 31,
		HighNote: 1<<31 - 1,
	}
}

// Applies reports whether the sound covers the channel/note pair
func (s Sound) Applies(channel, note int) bool {
	if s.Channel != Omni && channel != s.Channel {
		return false
	}
	return note >= s.LowNote && note <= s.HighNote
}
