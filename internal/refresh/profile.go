package refresh

import (
	"fmt"
	"sort"
)

// Profile holds the wording and small behavioural differences between the
// two dashboard layouts.
type Profile struct {
	Name string

	// TickLabel is shown before timer-driven cycles. Empty shows nothing.
	TickLabel string
	// LoadLabel is shown before every cycle. Empty shows nothing.
	LoadLabel string
	// ManualLabel is shown when the user asks for a refresh.
	ManualLabel string
	// ManualNotice is posted right after a manual refresh is issued.
	ManualNotice string

	OnlineLabel  string
	OfflineLabel string
	// ErrorHistoryEntry adds a synthetic error row to the failure placeholder.
	ErrorHistoryEntry bool

	AutoOnNotice  string
	AutoOffNotice string
	AutoOnText    string
	AutoOffText   string

	// CopyPrefix precedes the copied text in the clipboard toast.
	CopyPrefix string
}

// Shared labels.
const (
	NetworkOfflineLabel = "网络离线"
	NetworkUpNotice     = "网络连接已恢复"
	NetworkDownNotice   = "网络连接已断开"
	CrashLabel          = "运行出现错误"
)

// Classic is the single-page layout: detailed status texts and an error row
// in history after a failed fetch.
var Classic = Profile{
	Name:              "classic",
	TickLabel:         "正在更新数据...",
	ManualLabel:       "手动刷新中...",
	ManualNotice:      "手动刷新完成",
	OnlineLabel:       "在线 - 数据已更新",
	OfflineLabel:      "离线 - 无法获取数据",
	ErrorHistoryEntry: true,
	AutoOnNotice:      "自动刷新已开启",
	AutoOffNotice:     "自动刷新已关闭",
	AutoOnText:        "开启",
	AutoOffText:       "关闭",
	CopyPrefix:        "已复制到剪贴板: ",
}

// Portal is the services layout: short status texts, a loading label on
// every cycle and an empty history after a failed fetch.
var Portal = Profile{
	Name:          "portal",
	LoadLabel:     "正在获取数据...",
	ManualLabel:   "手动刷新中...",
	OnlineLabel:   "在线",
	OfflineLabel:  "离线",
	AutoOnNotice:  "自动刷新已启用",
	AutoOffNotice: "自动刷新已暂停",
	AutoOnText:    "启用",
	AutoOffText:   "暂停",
	CopyPrefix:    "已复制: ",
}

var profiles = map[string]Profile{
	Classic.Name: Classic,
	Portal.Name:  Portal,
}

// LookupProfile returns the named profile.
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (want one of %v)", name, ProfileNames())
	}
	return p, nil
}

// ProfileNames lists the known profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
