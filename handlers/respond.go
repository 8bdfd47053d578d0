package handlers

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"

	"github.com/nsneverhax/nhxinfobot/triggers"
)

// messenger is the part of *discordgo.Session used to deliver trigger
// responses.
type messenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// deliverResponse sends a trigger's text, split to fit the message limit,
// then each of its files as a separate upload. Files are resolved against
// baseDir. Every part is attempted; the errors are joined.
func deliverResponse(m messenger, baseDir, channelID string, resp *triggers.Response) error {
	var errs []error

	if resp.Text != "" {
		for _, chunk := range triggers.SplitMessage(resp.Text, triggers.MaxMessageLen) {
			if _, err := m.ChannelMessageSend(channelID, chunk); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, name := range resp.Files {
		if err := sendFile(m, baseDir, channelID, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sendFile(m messenger, baseDir, channelID, name string) error {
	f, err := os.Open(filepath.Join(baseDir, name))
	if err != nil {
		_, sendErr := m.ChannelMessageSend(channelID, fmt.Sprintf("Sorry, I couldn't find the file: %s", name))
		return sendErr
	}
	defer f.Close()

	_, err = m.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:        filepath.Base(name),
			ContentType: mime.TypeByExtension(filepath.Ext(name)),
			Reader:      f,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}
