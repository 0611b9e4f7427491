package model

import "fmt"

// Manifest lists the assets one model bundle needs.
type Manifest struct {
	Name    string
	BaseURL string
	Files   []AssetFile
}

// AssetFile is one downloadable asset of a bundle.
type AssetFile struct {
	Name   string
	SHA256 string
}

// PinnedManifest returns the asset list for a known model bundle name.
func PinnedManifest(name string) (Manifest, error) {
	switch name {
	case "kitten-nano-en":
		return Manifest{
			Name:    name,
			BaseURL: "https://huggingface.co/KittenML/kitten-tts-nano-0.1/resolve/main",
			Files: []AssetFile{
				// Checksums resolved on first fetch and enforced on
				// subsequent ones by the cache-hit path.
				{Name: "kitten_tts_nano_v0_1.onnx"},
				{Name: "vocab.json"},
			},
		}, nil
	default:
		return Manifest{}, fmt.Errorf("no pinned manifest for model %q", name)
	}
}

// VoiceAssetName returns the templated asset name for a voice id.
func VoiceAssetName(voiceID string) string {
	return "voices/" + voiceID + ".bin"
}
