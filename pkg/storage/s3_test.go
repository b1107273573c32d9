package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAvatarFileType(t *testing.T) {
	assert.True(t, ValidateAvatarFileType("image/png", "x.bin"))
	assert.True(t, ValidateAvatarFileType("", "me.JPEG"))
	assert.False(t, ValidateAvatarFileType("video/mp4", "clip.mp4"))
	assert.False(t, ValidateAvatarFileType("", "notes.txt"))
}

func TestAvatarKey(t *testing.T) {
	k1 := AvatarKey("u1", "../../etc/me.PNG")
	k2 := AvatarKey("u1", "me.png")
	assert.True(t, strings.HasPrefix(k1, "avatars/u1/"))
	assert.True(t, strings.HasSuffix(k1, ".png"))
	assert.NotEqual(t, k1, k2)
	assert.True(t, strings.HasSuffix(AvatarKey("u1", "noext"), ".jpg"))
	assert.Equal(t, "image/webp", ContentTypeForFilename("a.webp"))
}

func TestKeyFromURL(t *testing.T) {
	s := &S3{cfg: S3Config{Region: "eu-west-1", AvatarsBucket: "bf-avatars"}}
	url := s.PublicObjectURL("avatars/u1/a.png")
	assert.Equal(t, "https://bf-avatars.s3.eu-west-1.amazonaws.com/avatars/u1/a.png", url)
	assert.Equal(t, "avatars/u1/a.png", s.KeyFromURL(url))
	assert.Empty(t, s.KeyFromURL("https://example.com/a.png"))
}
