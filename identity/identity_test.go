// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package identity

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/ternoa-network/staking-exporter/chainclient"
)

type fakeReader struct {
	registrations map[string]*chainclient.Registration
	subs          map[string]*chainclient.SubIdentity
	err           error
}

func (r *fakeReader) IdentityOf(addr string) (*chainclient.Registration, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.registrations[addr], nil
}

func (r *fakeReader) SuperOf(addr string) (*chainclient.SubIdentity, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.subs[addr], nil
}

func registration(display string) *chainclient.Registration {
	return &chainclient.Registration{
		Info: chainclient.IdentityInfo{
			Display: chainclient.Data{Raw: display},
		},
	}
}

func TestResolveDirectRegistration(t *testing.T) {
	reader := &fakeReader{
		registrations: map[string]*chainclient.Registration{
			"5Fbob": {
				Info: chainclient.IdentityInfo{
					Display: chainclient.Data{Raw: "Bob"},
					Email:   chainclient.Data{Raw: "bob@ternoa.network"},
				},
			},
		},
	}

	id := NewResolver(reader).Resolve("5Fbob")
	assert.Equal(t, "Bob", id.Display)
	assert.Equal(t, "bob@ternoa.network", id.Email)
}

func TestResolveSubIdentity(t *testing.T) {
	reader := &fakeReader{
		registrations: map[string]*chainclient.Registration{
			"5Fbob": registration("Bob"),
		},
		subs: map[string]*chainclient.SubIdentity{
			"5Falice": {Parent: "5Fbob", Name: chainclient.Data{Raw: "alice"}},
		},
	}

	id := NewResolver(reader).Resolve("5Falice")
	assert.Equal(t, "Bob/alice", id.Display)
}

func TestResolveParentTakesPrecedenceOverOwnRegistration(t *testing.T) {
	// an address that is both self-registered and a sub-identity resolves
	// through its parent
	reader := &fakeReader{
		registrations: map[string]*chainclient.Registration{
			"5Fbob":   registration("Bob"),
			"5Falice": registration("AliceOwn"),
		},
		subs: map[string]*chainclient.SubIdentity{
			"5Falice": {Parent: "5Fbob", Name: chainclient.Data{Raw: "alice"}},
		},
	}

	id := NewResolver(reader).Resolve("5Falice")
	assert.Equal(t, "Bob/alice", id.Display)
}

func TestResolveSubIdentityWithoutParentDisplay(t *testing.T) {
	reader := &fakeReader{
		registrations: map[string]*chainclient.Registration{
			"5Fbob": registration(""),
		},
		subs: map[string]*chainclient.SubIdentity{
			"5Falice": {Parent: "5Fbob", Name: chainclient.Data{Raw: "alice"}},
		},
	}

	id := NewResolver(reader).Resolve("5Falice")
	assert.Equal(t, "alice", id.Display)
}

func TestResolveUnregistered(t *testing.T) {
	id := NewResolver(&fakeReader{}).Resolve("5Fnobody")
	assert.Equal(t, Identity{}, id)
}

func TestResolveLookupFailure(t *testing.T) {
	reader := &fakeReader{err: errors.New("connection reset")}

	id := NewResolver(reader).Resolve("5Fbob")
	assert.Equal(t, Identity{}, id)
}

func TestDisplayName(t *testing.T) {
	reader := &fakeReader{
		registrations: map[string]*chainclient.Registration{
			"5Fbob": registration("Bob"),
		},
	}
	resolver := NewResolver(reader)

	assert.Equal(t, "Bob", resolver.DisplayName("5Fbob"))

	// unregistered addresses fall back to a fixed-length prefix
	addr := "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	assert.Equal(t, addr[:20], resolver.DisplayName(addr))

	// short addresses pass through untouched
	assert.Equal(t, "5Fshort", resolver.DisplayName("5Fshort"))
}
