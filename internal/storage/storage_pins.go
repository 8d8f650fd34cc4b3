package storage

func (s *Storage) SetPinChannel(guildID, channelID string) error {
	return s.update(guildID, func(r *Record) error {
		r.PinChannel = channelID
		return nil
	})
}

// PinChannel returns the guild's archive channel, or "" if none was set.
func (s *Storage) PinChannel(guildID string) (string, error) {
	r, err := s.view(guildID)
	if err != nil {
		return "", err
	}
	return r.PinChannel, nil
}
