package note

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// MediaKind classifies an attachment.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaFile  MediaKind = "file"
)

// ParseMediaKind maps user input to a MediaKind.
func ParseMediaKind(s string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "photo", "image", "picture", "img":
		return MediaPhoto, nil
	case "video", "movie":
		return MediaVideo, nil
	case "audio", "recording", "voice":
		return MediaAudio, nil
	case "", "file", "document", "doc":
		return MediaFile, nil
	}
	return "", fmt.Errorf("note: unknown media kind %q", s)
}

var mediaExtensions = map[string]MediaKind{
	".heic": MediaPhoto,
	".mov":  MediaVideo,
	".mp4":  MediaVideo,
	".m4v":  MediaVideo,
	".webm": MediaVideo,
	".3gp":  MediaVideo,
	".m4a":  MediaAudio,
	".mp3":  MediaAudio,
	".aac":  MediaAudio,
	".wav":  MediaAudio,
	".ogg":  MediaAudio,
	".amr":  MediaAudio,
}

// GuessMediaKind picks a MediaKind from the extension of name.
func GuessMediaKind(name string) MediaKind {
	ext := strings.ToLower(filepath.Ext(name))
	if k, ok := mediaExtensions[ext]; ok {
		return k
	}
	typ := mime.TypeByExtension(ext)
	switch {
	case strings.HasPrefix(typ, "image/"):
		return MediaPhoto
	case strings.HasPrefix(typ, "video/"):
		return MediaVideo
	case strings.HasPrefix(typ, "audio/"):
		return MediaAudio
	}
	return MediaFile
}

// Media is an attachment owned by a note. It is removed with its note.
type Media struct {
	ID          int64     `json:"id"`
	NoteID      int64     `json:"noteId"`
	Kind        MediaKind `json:"kind"`
	URI         string    `json:"uri"`
	Description string    `json:"description,omitempty"`
}
