// Package l10n holds the user-facing strings in Chinese and English.
package l10n

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Language is the display language preference.
type Language string

const (
	System  Language = "system"
	Chinese Language = "zh"
	English Language = "en"
)

// Languages returns the choices in display order.
func Languages() []Language { return []Language{System, Chinese, English} }

// ParseLanguage accepts a language code. An empty string means System.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case System, "":
		return System, nil
	case Chinese:
		return Chinese, nil
	case English:
		return English, nil
	}
	return "", fmt.Errorf("unknown language %q (want system, zh or en)", s)
}

// DisplayName is the label shown in the language picker.
func (l Language) DisplayName() string {
	switch l {
	case Chinese:
		return "中文"
	case English:
		return "English"
	}
	return "System / 系统"
}

// Strings is one translation table.
type Strings struct {
	SleepTime             string
	WakeTime              string
	TimedWake             string
	WOLNote               string
	Repeat                string
	EnableSchedule        string
	PauseSchedule         string
	SystemDetails         string
	LaunchAtLogin         string
	Language              string
	StayAwake             string
	SleepPrefix           string
	WakePrefix            string
	EveryDay              string
	Weekdays              string
	Weekends              string
	ScheduleEnabled       string
	SchedulePaused        string
	ComputerWillStayAwake string
	NoSystemSchedule      string
	YourSettings          string
	SystemSchedule        string
	DriftWarning          string
	NextSleep             string
	NextWake              string
	On                    string
	Off                   string
}

var chineseStrings = Strings{
	SleepTime:             "睡眠时间",
	WakeTime:              "唤醒时间",
	TimedWake:             "定时唤醒",
	WOLNote:               "(使用 Wake on LAN 唤醒)",
	Repeat:                "重复",
	EnableSchedule:        "启用调度",
	PauseSchedule:         "暂停调度",
	SystemDetails:         "系统调度详情",
	LaunchAtLogin:         "开机自动启动",
	Language:              "语言",
	StayAwake:             "电脑保持唤醒",
	SleepPrefix:           "睡眠",
	WakePrefix:            "唤醒",
	EveryDay:              "每天",
	Weekdays:              "工作日",
	Weekends:              "周末",
	ScheduleEnabled:       "调度已启用",
	SchedulePaused:        "调度已暂停",
	ComputerWillStayAwake: "电脑将保持唤醒状态",
	NoSystemSchedule:      "当前无系统调度",
	YourSettings:          "你的设置",
	SystemSchedule:        "系统调度",
	DriftWarning:          "系统调度与你的设置不一致",
	NextSleep:             "下次睡眠",
	NextWake:              "下次唤醒",
	On:                    "开",
	Off:                   "关",
}

var englishStrings = Strings{
	SleepTime:             "Sleep Time",
	WakeTime:              "Wake Time",
	TimedWake:             "Timed Wake",
	WOLNote:               "(Wake on LAN)",
	Repeat:                "Repeat",
	EnableSchedule:        "Enable Schedule",
	PauseSchedule:         "Pause Schedule",
	SystemDetails:         "System Schedule Details",
	LaunchAtLogin:         "Launch at Login",
	Language:              "Language",
	StayAwake:             "Computer Stays Awake",
	SleepPrefix:           "Sleep",
	WakePrefix:            "Wake",
	EveryDay:              "Every Day",
	Weekdays:              "Weekdays",
	Weekends:              "Weekends",
	ScheduleEnabled:       "Schedule Enabled",
	SchedulePaused:        "Schedule Paused",
	ComputerWillStayAwake: "Computer will stay awake",
	NoSystemSchedule:      "No system schedule",
	YourSettings:          "Your settings",
	SystemSchedule:        "System schedule",
	DriftWarning:          "System schedule differs from your settings",
	NextSleep:             "Next sleep",
	NextWake:              "Next wake",
	On:                    "on",
	Off:                   "off",
}

// Resolve turns a language preference into a concrete language. System uses
// preferred, a locale or BCP 47 tag such as "zh_CN.UTF-8" or "zh-Hant";
// anything that is not Chinese resolves to English. A tag that does not
// parse is still Chinese when it starts with "zh".
func Resolve(lang Language, preferred string) Language {
	switch lang {
	case Chinese, English:
		return lang
	}
	tag, err := language.Parse(normalizeLocale(preferred))
	if err != nil {
		if strings.HasPrefix(strings.ToLower(preferred), "zh") {
			return Chinese
		}
		return English
	}
	if base, _ := tag.Base(); base.String() == "zh" {
		return Chinese
	}
	return English
}

// ForLanguage returns the string table for lang, resolving System against preferred.
func ForLanguage(lang Language, preferred string) Strings {
	if Resolve(lang, preferred) == Chinese {
		return chineseStrings
	}
	return englishStrings
}

// normalizeLocale converts a POSIX locale like "zh_CN.UTF-8@pinyin" into "zh-CN".
func normalizeLocale(s string) string {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	return strings.ReplaceAll(s, "_", "-")
}

// PreferredFromEnv returns the first locale set in LC_ALL, LC_MESSAGES or LANG.
func PreferredFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// DaysDisplay labels a day code, falling back to the raw code for
// combinations other than the three canonical sets.
func (s Strings) DaysDisplay(code string) string {
	switch code {
	case "MTWRFSU":
		return s.EveryDay
	case "MTWRF":
		return s.Weekdays
	case "SU":
		return s.Weekends
	}
	return code
}

// OnOff renders a boolean setting.
func (s Strings) OnOff(b bool) string {
	if b {
		return s.On
	}
	return s.Off
}
