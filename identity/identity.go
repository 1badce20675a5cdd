// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package identity resolves on-chain identities to human-readable names.
package identity

import (
	"github.com/ternoa-network/staking-exporter/chainclient"
	"github.com/ternoa-network/staking-exporter/log"
)

var logger = log.WithContext("pkg", "identity")

// addrPrefixLen is how much of a raw address stands in for a missing display
// name. Full SS58 addresses blow up metric label cardinality dashboards.
const addrPrefixLen = 20

// ChainReader is the subset of chain queries identity resolution needs.
type ChainReader interface {
	SuperOf(addr string) (*chainclient.SubIdentity, error)
	IdentityOf(addr string) (*chainclient.Registration, error)
}

// Identity is a resolved identity record. The zero value means no identity
// is registered for the address.
type Identity struct {
	Display string
	Legal   string
	Web     string
	Riot    string
	Email   string
	Twitter string
}

// Resolver looks up identity registrations, following sub-identity links to
// the parent account.
type Resolver struct {
	reader ChainReader
}

func NewResolver(reader ChainReader) *Resolver {
	return &Resolver{reader: reader}
}

// Resolve returns the identity registered for addr. The parent relationship
// takes precedence: a sub-identity resolves through its parent, with the
// display formatted "<parent>/<sub>" when the parent has a display name and
// "<sub>" otherwise. The address's own registration is the fallback when no
// parent relationship exists. Lookup failures degrade to the zero value so
// one bad identity never takes down a poll cycle.
func (r *Resolver) Resolve(addr string) Identity {
	sub, err := r.reader.SuperOf(addr)
	if err != nil {
		logger.Warn("sub-identity lookup failed", "addr", addr, "err", err)
		return Identity{}
	}

	if sub != nil {
		parent, err := r.reader.IdentityOf(sub.Parent)
		if err != nil {
			logger.Warn("parent identity lookup failed", "addr", addr, "parent", sub.Parent, "err", err)
			return Identity{}
		}

		id := Identity{Display: sub.Name.Raw}
		if parent != nil {
			id = fromInfo(&parent.Info)
			if id.Display != "" {
				id.Display = id.Display + "/" + sub.Name.Raw
			} else {
				id.Display = sub.Name.Raw
			}
		}
		return id
	}

	reg, err := r.reader.IdentityOf(addr)
	if err != nil {
		logger.Warn("identity lookup failed", "addr", addr, "err", err)
		return Identity{}
	}
	if reg == nil {
		return Identity{}
	}
	return fromInfo(&reg.Info)
}

// DisplayName returns the resolved display name, falling back to a prefix of
// the address itself.
func (r *Resolver) DisplayName(addr string) string {
	if display := r.Resolve(addr).Display; display != "" {
		return display
	}
	if len(addr) > addrPrefixLen {
		return addr[:addrPrefixLen]
	}
	return addr
}

func fromInfo(info *chainclient.IdentityInfo) Identity {
	return Identity{
		Display: info.Display.Raw,
		Legal:   info.Legal.Raw,
		Web:     info.Web.Raw,
		Riot:    info.Riot.Raw,
		Email:   info.Email.Raw,
		Twitter: info.Twitter.Raw,
	}
}
