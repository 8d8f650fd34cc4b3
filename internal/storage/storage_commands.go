package storage

import (
	"slices"
	"time"
)

func (s *Storage) DisableGroup(guildID, group string) error {
	return s.update(guildID, func(r *Record) error {
		if !slices.Contains(r.CommandsDisabled, group) {
			r.CommandsDisabled = append(r.CommandsDisabled, group)
		}
		return nil
	})
}

func (s *Storage) EnableGroup(guildID, group string) error {
	return s.update(guildID, func(r *Record) error {
		r.CommandsDisabled = slices.DeleteFunc(r.CommandsDisabled, func(g string) bool { return g == group })
		return nil
	})
}

func (s *Storage) IsGroupDisabled(guildID, group string) (bool, error) {
	r, err := s.view(guildID)
	if err != nil {
		return false, err
	}
	return slices.Contains(r.CommandsDisabled, group), nil
}

func (s *Storage) GetDisabledGroups(guildID string) ([]string, error) {
	r, err := s.view(guildID)
	if err != nil {
		return nil, err
	}
	return r.CommandsDisabled, nil
}

// SetCommand appends to the guild's command history, keeping the newest entries.
func (s *Storage) SetCommand(guildID, channelID, channelName, guildName, userID, username, command, param string) error {
	return s.update(guildID, func(r *Record) error {
		r.CommandsHistory = append(r.CommandsHistory, CommandHistory{
			ChannelID:   channelID,
			ChannelName: channelName,
			GuildName:   guildName,
			UserID:      userID,
			Username:    username,
			Command:     command,
			Param:       param,
			Datetime:    time.Now(),
		})
		if n := len(r.CommandsHistory); n > commandHistoryLimit {
			r.CommandsHistory = r.CommandsHistory[n-commandHistoryLimit:]
		}
		return nil
	})
}

func (s *Storage) GetCommandsHistory(guildID string) ([]CommandHistory, error) {
	r, err := s.view(guildID)
	if err != nil {
		return nil, err
	}
	return r.CommandsHistory, nil
}
