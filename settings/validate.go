package settings

// Validate clamps a loaded configuration into range rather than rejecting
// it outright. A schema mismatch is the one case that still resets
// everything to defaults, since by this point migration has already had
// its chance.
func Validate(c *GlobalConfig) {
	if c.SchemaVersion != SchemaVersion {
		*c = Defaults()
		return
	}

	if c.CurrentSpeed > Speed78 {
		c.CurrentSpeed = Speed33
	}
	if c.MaxAmplitude > 100 {
		c.MaxAmplitude = 100
	}

	for i := range c.Speeds {
		s := &c.Speeds[i]
		if s.MinFrequency > s.MaxFrequency {
			s.MinFrequency, s.MaxFrequency = s.MaxFrequency, s.MinFrequency
		}
		if s.Frequency < s.MinFrequency {
			s.Frequency = s.MinFrequency
		}
		if s.Frequency > s.MaxFrequency {
			s.Frequency = s.MaxFrequency
		}
		if s.SoftStartDuration < 0 {
			s.SoftStartDuration = 0
		}
		for p := range s.PhaseOffset {
			for s.PhaseOffset[p] >= 360.0 {
				s.PhaseOffset[p] -= 360.0
			}
			for s.PhaseOffset[p] < 0.0 {
				s.PhaseOffset[p] += 360.0
			}
		}
	}
}
