package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"downlink/aprs"
	"downlink/blocks"
	"downlink/config"
	"downlink/device/aprsis"
	"downlink/device/kiss"
	"downlink/metrics"
	"downlink/monitoring"
	"downlink/packet"
	"downlink/store"
	"downlink/track"
	"downlink/ui/footer"
	"downlink/ui/header"
	"downlink/ui/hexview"
	mapview "downlink/ui/map"
	"downlink/ui/msgbar"
	"downlink/ui/readout"
	"downlink/ui/sidebar"
)

// PacketClient defines the interface for TNC/network clients
type PacketClient interface {
	Start(chan<- kiss.Received)
	Close() error
}

// --- Constants for Layout ---
const (
	sidebarWidth = 28
	readoutWidth = 30
	msgbarHeight = 7
)

type linkClosedMsg struct{}

type dropMsg struct{ err error }

// uploader sends frames to APRS-IS.
type uploader interface {
	Send(f aprs.Frame) error
	Close() error
}

// recorder persists and forwards what the monitor hears. Nil parts are
// disabled.
type recorder struct {
	metrics *metrics.Metrics
	store   *store.Store
	track   *track.Writer

	igate    uploader
	igateCfg config.IGateConfig
	station  string
	dest     string
	lastPos  map[string]time.Time
}

func openRecorder(conf config.Config, m *metrics.Metrics) (*recorder, error) {
	r := &recorder{
		metrics:  m,
		igateCfg: conf.IGate,
		station:  conf.Station.Callsign,
		dest:     conf.Interface.AX25Dest,
		lastPos:  make(map[string]time.Time),
	}
	if conf.Store.Path != "" {
		s, err := store.Open(conf.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		monitoring.Logf("Logging packets to %s, session %s", conf.Store.Path, s.Session())
		r.store = s
	}
	if conf.Track.Path != "" {
		t, err := track.Create(conf.Track.Path)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.track = t
	}
	if conf.IGate.Enabled {
		c, err := aprsis.Connect(conf.IGate, conf.Station.Callsign)
		if err != nil {
			r.Close()
			return nil, err
		}
		go c.Start()
		if c.IsVerified {
			r.igate = c
		} else {
			monitoring.Logf("Warning: APRS-IS login not verified, not uploading")
			c.Close()
		}
	}
	return r, nil
}

func (r *recorder) record(ctx context.Context, rx kiss.Received, fixes []blocks.GNSSLocation, texts []blocks.Message) error {
	if r.metrics != nil {
		r.metrics.RecordReceived(rx.Packet)
	}
	var errs []error
	if r.store != nil {
		if _, err := r.store.Insert(ctx, rx.At, rx.From, rx.Packet, rx.Raw); err != nil {
			errs = append(errs, err)
		}
	}
	if r.track != nil {
		for _, fix := range fixes {
			err := r.track.Add(rx.Packet.Callsign(), rx.Packet.Seq(), fix)
			if err != nil && !errors.Is(err, track.ErrNoFix) {
				errs = append(errs, err)
			}
		}
	}
	if r.igate != nil {
		errs = append(errs, r.upload(rx, fixes, texts))
	}
	return errors.Join(errs...)
}

// upload forwards fixes, at most one per callsign per interval, and
// status text.
func (r *recorder) upload(rx kiss.Received, fixes []blocks.GNSSLocation, texts []blocks.Message) error {
	call := rx.Packet.Callsign()
	var errs []error
	send := func(payload string) error {
		return r.igate.Send(aprs.Frame{Src: call, Dest: r.dest, Path: []string{"qAR", r.station}, Payload: payload})
	}

	for _, fix := range fixes {
		if fix.Fix != blocks.Fix2D && fix.Fix != blocks.Fix3D {
			continue
		}
		if last, ok := r.lastPos[call]; ok && rx.At.Sub(last) < r.igateCfg.Interval.Duration {
			continue
		}
		comment := strings.TrimSpace(fmt.Sprintf("%s #%d", r.igateCfg.Comment, rx.Packet.Seq()))
		payload, err := aprs.Position{
			Lat: fix.Latitude, Lon: fix.Longitude, Altitude: fix.Altitude, Comment: comment,
		}.Payload()
		if err == nil {
			err = send(payload)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.lastPos[call] = rx.At
	}

	for _, m := range texts {
		if m.Subtype != packet.DataStatus {
			continue
		}
		payload, err := aprs.StatusPayload(m.Text)
		if err == nil {
			err = send(payload)
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (r *recorder) Close() error {
	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
	}
	if r.track != nil {
		errs = append(errs, r.track.Close())
	}
	if r.igate != nil {
		errs = append(errs, r.igate.Close())
	}
	return errors.Join(errs...)
}

// model holds the application's state
type model struct {
	ctx    context.Context
	width  int
	height int
	config config.Config

	headerModel  header.Model
	mapModel     mapview.Model
	hexModel     hexview.Model
	readoutModel readout.Model
	msgbarModel  msgbar.Model
	footerModel  footer.Model
	sidebarModel sidebar.Model
	showHex      bool

	packetClient PacketClient
	packetChan   chan kiss.Received
	dropChan     chan error
	rec          *recorder

	err error
}

// initialModel creates the starting model
func initialModel(ctx context.Context, conf config.Config, client PacketClient, rec *recorder) model {
	mapMod, err := mapview.New(conf)
	if err != nil {
		return model{err: err}
	}

	footerMod := footer.New(conf.Map.Shapefile)
	footerMod.SetZoom(mapMod.GetZoomLevel())

	return model{
		ctx:          ctx,
		width:        80, // Default width
		height:       60, // Default height
		config:       conf,
		headerModel:  header.New(conf.Station.Callsign),
		mapModel:     mapMod,
		hexModel:     hexview.New(),
		readoutModel: readout.New(),
		msgbarModel:  msgbar.New(),
		footerModel:  footerMod,
		sidebarModel: sidebar.New(),
		packetClient: client,
		packetChan:   make(chan kiss.Received),
		dropChan:     make(chan error, 16),
		rec:          rec,
	}
}

// listenForPackets is a tea.Cmd that waits for the next packet
func (m model) listenForPackets() tea.Cmd {
	return func() tea.Msg {
		r, ok := <-m.packetChan
		if !ok {
			return linkClosedMsg{}
		}
		return r
	}
}

func (m model) listenForDrops() tea.Cmd {
	return func() tea.Msg {
		return dropMsg{<-m.dropChan}
	}
}

func (m model) Init() tea.Cmd {
	if m.err != nil {
		return nil
	}
	go m.packetClient.Start(m.packetChan)
	link := header.LinkMsg{Up: true, Detail: "kiss " + m.config.Interface.Device}
	return tea.Batch(
		func() tea.Msg { return link },
		m.listenForPackets(),
		m.listenForDrops(),
	)
}

// receive routes one packet to every panel and the recorder.
func (m *model) receive(rx kiss.Received) {
	p := rx.Packet
	m.sidebarModel.AddPacket(rx.At, p.Callsign(), p.Seq(), len(p.Blocks))
	m.footerModel.SetLastPacket(p.Callsign(), p.Seq(), rx.At)
	m.hexModel.SetPacket(rx.Raw)

	var (
		fixes []blocks.GNSSLocation
		texts []blocks.Message
	)
	for i := range p.Blocks {
		v, err := blocks.Decode(p.Blocks[i])
		if err != nil {
			monitoring.Debugf("packet #%d block %d: %v", p.Seq(), i, err)
			continue
		}
		switch v := v.(type) {
		case blocks.Message:
			texts = append(texts, v)
			m.msgbarModel, _ = m.msgbarModel.Update(msgbar.Text{Callsign: p.Callsign(), Message: v})
		case blocks.GNSSLocation:
			fixes = append(fixes, v)
			if v.Fix == blocks.Fix2D || v.Fix == blocks.Fix3D {
				m.mapModel, _ = m.mapModel.Update(mapview.Position{
					Callsign: p.Callsign(), Lon: v.Longitude, Lat: v.Latitude, Altitude: v.Altitude,
				})
				m.footerModel.SetLocator(mapview.Locator(v.Longitude, v.Latitude))
			}
		}
		m.readoutModel, _ = m.readoutModel.Update(readout.Value{Value: v})
	}

	if m.rec == nil {
		return
	}
	if err := m.rec.record(m.ctx, rx, fixes, texts); err != nil {
		m.msgbarModel, _ = m.msgbarModel.Update(msgbar.Notice(err.Error()))
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
		return m, nil
	}

	var (
		headerCmd  tea.Cmd
		mapCmd     tea.Cmd
		hexCmd     tea.Cmd
		readoutCmd tea.Cmd
		msgbarCmd  tea.Cmd
		footerCmd  tea.Cmd
		sidebarCmd tea.Cmd
		cmds       []tea.Cmd
	)

	switch msg := msg.(type) {
	case kiss.Received:
		m.receive(msg)
		m.footerModel.SetZoom(m.mapModel.GetZoomLevel())
		cmds = append(cmds, m.listenForPackets())

	case dropMsg:
		m.footerModel.AddDropped()
		cmds = append(cmds, m.listenForDrops())

	case linkClosedMsg:
		m.headerModel, headerCmd = m.headerModel.Update(header.LinkMsg{Up: false, Detail: "link closed"})
		m.msgbarModel, msgbarCmd = m.msgbarModel.Update(msgbar.Notice("connection closed"))
		cmds = append(cmds, headerCmd, msgbarCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 1
		footerHeight := 1
		mainHeight := m.height - headerHeight - msgbarHeight - footerHeight
		mapWidth := m.width - sidebarWidth - readoutWidth
		if mainHeight < 1 {
			mainHeight = 1
		}
		if mapWidth < 1 {
			mapWidth = 1
		}

		headerMsg := tea.WindowSizeMsg{Width: m.width, Height: headerHeight}
		m.headerModel, headerCmd = m.headerModel.Update(headerMsg)

		sidebarMsg := tea.WindowSizeMsg{Width: sidebarWidth, Height: mainHeight}
		m.sidebarModel, sidebarCmd = m.sidebarModel.Update(sidebarMsg)

		mapMsg := tea.WindowSizeMsg{Width: mapWidth, Height: mainHeight}
		m.mapModel, mapCmd = m.mapModel.Update(mapMsg)
		m.hexModel, hexCmd = m.hexModel.Update(mapMsg)

		readoutMsg := tea.WindowSizeMsg{Width: readoutWidth, Height: mainHeight}
		m.readoutModel, readoutCmd = m.readoutModel.Update(readoutMsg)

		msgbarMsg := tea.WindowSizeMsg{Width: m.width, Height: msgbarHeight}
		m.msgbarModel, msgbarCmd = m.msgbarModel.Update(msgbarMsg)

		footerMsg := tea.WindowSizeMsg{Width: m.width, Height: footerHeight}
		m.footerModel, footerCmd = m.footerModel.Update(footerMsg)

		cmds = append(cmds, headerCmd, sidebarCmd, mapCmd, hexCmd, readoutCmd, msgbarCmd, footerCmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "x":
			m.showHex = !m.showHex
		default:
			m.mapModel, mapCmd = m.mapModel.Update(msg)
			cmds = append(cmds, mapCmd)
			m.footerModel.SetZoom(m.mapModel.GetZoomLevel())
			m.footerModel.SetFollow(m.mapModel.Following())
		}

	default:
		m.headerModel, headerCmd = m.headerModel.Update(msg)
		m.mapModel, mapCmd = m.mapModel.Update(msg)
		m.msgbarModel, msgbarCmd = m.msgbarModel.Update(msg)
		m.footerModel, footerCmd = m.footerModel.Update(msg)
		m.sidebarModel, sidebarCmd = m.sidebarModel.Update(msg)
		cmds = append(cmds, headerCmd, mapCmd, msgbarCmd, footerCmd, sidebarCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Border(lipgloss.DoubleBorder(), true).
			BorderForeground(lipgloss.Color("9")).
			Padding(1).
			Align(lipgloss.Center, lipgloss.Center)
		return errorStyle.Render(
			"Error:\n\n" + m.err.Error() +
				"\n\nPress any key to quit.",
		)
	}

	centre := m.mapModel.View()
	if m.showHex {
		centre = m.hexModel.View()
	}

	middleStack := lipgloss.JoinHorizontal(lipgloss.Top,
		m.sidebarModel.View(),
		centre,
		m.readoutModel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerModel.View(),
		middleStack,
		m.msgbarModel.View(),
		m.footerModel.View(),
	)
}

// runMonitor connects to the TNC and shows received packets until the
// user quits or ctx is canceled.
func runMonitor(ctx context.Context, conf config.Config, m *metrics.Metrics) error {
	if !strings.EqualFold(conf.Interface.Type, "kiss") {
		return fmt.Errorf("monitor needs a kiss interface, have %q", conf.Interface.Type)
	}
	client, err := kiss.Connect(conf.Interface, conf.Station.Callsign)
	if err != nil {
		return fmt.Errorf("failed to connect to interface: %w", err)
	}
	defer client.Close()

	rec, err := openRecorder(conf, m)
	if err != nil {
		return err
	}
	defer rec.Close()

	mod := initialModel(ctx, conf, client, rec)
	client.OnDrop = func(err error) {
		m.RecordDecodeError()
		select {
		case mod.dropChan <- err:
		default:
		}
	}

	// the terminal belongs to the UI; keep logging only if it goes to a file
	if conf.Logging.File == "" {
		prev := monitoring.Logger()
		monitoring.SetLogger(nil)
		defer monitoring.SetLogger(prev)
	}

	p := tea.NewProgram(mod, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
