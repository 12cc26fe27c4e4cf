package commands

import (
	"net"
	"strconv"

	"github.com/Ucell-first/cmpp30/cmpp/codec"
	"github.com/Ucell-first/cmpp30/cmpp/config"
	cmpperrors "github.com/Ucell-first/cmpp30/cmpp/errors"
	cmpplog "github.com/Ucell-first/cmpp30/cmpp/log"
	"github.com/Ucell-first/cmpp30/session"
)

// newClient wires a session.Client against cfg's configured gateway
// address, with the given logger attached.
func newClient(cfg config.Config, logger cmpplog.Logger) (*session.Client, error) {
	host, portStr, err := net.SplitHostPort(cfg.Address)
	if err != nil {
		return nil, cmpperrors.Wrap(cmpperrors.New("invalid CMPP_ADDRESS"), err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, cmpperrors.Wrap(cmpperrors.New("invalid CMPP_ADDRESS port"), err)
	}

	transport := codec.New(host, port, cfg.ConnectTimeout, cfg.SubmitTimeout)
	client := session.New(cfg, transport,
		session.WithLogger(logger),
		session.WithMetrics(newMetrics()),
	)
	return client, nil
}
