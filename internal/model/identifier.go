package model

import (
	"regexp"
	"strings"
)

// チャネル (識別子の接頭辞)
const (
	ChannelWechat = "wx"
	ChannelH5     = "h5"
	ChannelApp    = "app"
	ChannelOther  = "other"
)

// identifierPattern は "<channel>_<suffix>" 形式の識別子にマッチします。
var identifierPattern = regexp.MustCompile(`^(wx|h5|app|other)_.+`)

var knownChannels = map[string]bool{
	ChannelWechat: true,
	ChannelH5:     true,
	ChannelApp:    true,
	ChannelOther:  true,
}

// IsValidIdentifier はテナント識別子として受け入れ可能かを判定します。
func IsValidIdentifier(identifier string) bool {
	return identifierPattern.MatchString(identifier)
}

// DeriveChannel は識別子の最初の "_" より前のトークンをチャネルとして返します。
// 認識できない接頭辞は ChannelOther になります。失敗することはありません。
func DeriveChannel(identifier string) string {
	prefix, _, _ := strings.Cut(identifier, "_")
	if knownChannels[prefix] {
		return prefix
	}
	return ChannelOther
}

// IsKnownChannel は test-login などで指定されたチャネル名を検証します。
func IsKnownChannel(channel string) bool {
	return knownChannels[channel]
}
