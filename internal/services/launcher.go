package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"ipdash/internal/notify"
	"ipdash/internal/snapshot"
)

var (
	// ErrIPUnavailable is returned when there is no resolved address yet.
	ErrIPUnavailable = errors.New("current ip unavailable")
	// ErrUnknownService is returned for keys the registry does not hold.
	ErrUnknownService = errors.New("unknown service")
)

// Launcher performs a service's launch strategy against an address.
type Launcher struct {
	registry *Registry
	opener   Opener
	saver    Saver
	copier   Copier
	notifier notify.Notifier
	log      zerolog.Logger
}

// NewLauncher wires the launcher to its side-effect ports.
func NewLauncher(r *Registry, o Opener, s Saver, c Copier, n notify.Notifier, log zerolog.Logger) *Launcher {
	return &Launcher{registry: r, opener: o, saver: s, copier: c, notifier: n, log: log}
}

// Registry returns the registry the launcher serves.
func (l *Launcher) Registry() *Registry {
	return l.registry
}

// Launch runs the strategy for key at ip. Every outcome is reported to the
// user through the notifier; the returned error is for the caller's logs.
func (l *Launcher) Launch(key, ip string) error {
	if snapshot.IsPlaceholder(ip) {
		l.notifier.Notify("当前IP地址不可用", notify.Error)
		return ErrIPUnavailable
	}
	d, ok := l.registry.Lookup(key)
	if !ok {
		l.notifier.Notify("未知服务: "+key, notify.Error)
		return fmt.Errorf("%w: %s", ErrUnknownService, key)
	}
	entry := l.registry.bindOne(d, ip)

	switch entry.Strategy {
	case DownloadRDP:
		return l.downloadRDP(ip)
	case CopyAddress:
		if err := l.copier.Copy(entry.Address); err != nil {
			l.log.Warn().Err(err).Str("service", key).Msg("copy connection info failed")
			return err
		}
		l.notifier.Notify(fmt.Sprintf("%s 连接信息已复制: %s", d.Name, entry.Address), notify.Success)
		return nil
	default:
		if err := l.opener.Open(entry.URL); err != nil {
			l.notifier.Notify("无法打开 "+d.Name, notify.Error)
			l.log.Warn().Err(err).Str("url", entry.URL).Msg("open service failed")
			return err
		}
		l.log.Info().Str("service", key).Str("url", entry.URL).Msg("service opened")
		l.notifier.Notify("正在打开 "+d.Name, notify.Success)
		return nil
	}
}

func (l *Launcher) downloadRDP(ip string) error {
	path, err := l.saver.Save(RDPFileName(ip), RDPMime, []byte(RDPProfile(ip)))
	if err != nil {
		l.notifier.Notify("RDP文件保存失败", notify.Error)
		l.log.Warn().Err(err).Str("ip", ip).Msg("save rdp profile failed")
		return err
	}
	l.log.Info().Str("path", path).Msg("rdp profile written")
	l.notifier.Notify("RDP文件已保存到 "+path+"，请双击打开", notify.Success)
	return nil
}

func (r *Registry) bindOne(d Descriptor, ip string) Entry {
	e := Entry{Descriptor: d, IP: ip, Address: HostPort(ip, d.Port), Strategy: StrategyFor(d.Key)}
	if e.Strategy == OpenURL {
		e.URL = "http://" + e.Address
	}
	return e
}
