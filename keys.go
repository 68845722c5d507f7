package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Refresh   key.Binding
	Toggle    key.Binding
	CopyIP    key.Binding
	CopyIface key.Binding
	Up        key.Binding
	Down      key.Binding
	Launch    key.Binding
	Source    key.Binding
	Suspend   key.Binding
	Help      key.Binding
	Quit      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

var keys = keyMap{
	Refresh: key.NewBinding(
		key.WithKeys("r", "R"),
		key.WithHelp("r", "刷新"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("a", "A"),
		key.WithHelp("a", "自动刷新"),
	),
	CopyIP: key.NewBinding(
		key.WithKeys("c", "C"),
		key.WithHelp("c", "复制IP"),
	),
	CopyIface: key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "复制接口"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "上一个服务"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "下一个服务"),
	),
	Launch: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "打开服务"),
	),
	Source: key.NewBinding(
		key.WithKeys("o", "O"),
		key.WithHelp("o", "数据源"),
	),
	Suspend: key.NewBinding(
		key.WithKeys("ctrl+z"),
		key.WithHelp("ctrl+z", "挂起"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "帮助"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "Q", "ctrl+c"),
		key.WithHelp("q", "退出"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "确认"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "取消"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Toggle, k.CopyIP, k.Launch, k.Source, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Toggle, k.Source},
		{k.CopyIP, k.CopyIface},
		{k.Up, k.Down, k.Launch},
		{k.Suspend, k.Help, k.Quit},
	}
}
