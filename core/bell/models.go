package bell

// Controls are the admin switches read by the bell hardware.
type Controls struct {
	ManualRing      int64 `json:"manualRing"`
	IsRinging       bool  `json:"isRinging"`
	AutoRingEnabled bool  `json:"autoRingEnabled"`
	IsSilenced      bool  `json:"isSilenced"`
}

// DefaultControls are reported when nothing was stored yet.
func DefaultControls() Controls {
	return Controls{AutoRingEnabled: true}
}

// ControlsPatch defines which switches an admin may flip.
type ControlsPatch struct {
	AutoRingEnabled *bool `json:"autoRingEnabled"`
	IsSilenced      *bool `json:"isSilenced"`
}

func (p ControlsPatch) IsEmpty() bool {
	return p.AutoRingEnabled == nil && p.IsSilenced == nil
}

// Apply returns c with the set fields of p.
func (p ControlsPatch) Apply(c Controls) Controls {
	if p.AutoRingEnabled != nil {
		c.AutoRingEnabled = *p.AutoRingEnabled
	}
	if p.IsSilenced != nil {
		c.IsSilenced = *p.IsSilenced
	}
	return c
}
