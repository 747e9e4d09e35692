/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package convention

import (
	"net/netip"
	"strings"

	"github.com/neuroph12/CompAktor/address"
)

// Elect returns the convention leader for a membership view: the Address with
// the lowest host, then the lowest port. self is always a candidate.
// IP hosts compare numerically and sort before host names, which compare as strings.
func Elect(self address.Address, view []address.Address) address.Address {
	leader := self
	for _, candidate := range view {
		if less(candidate, leader) {
			leader = candidate
		}
	}
	return leader
}

func less(a, b address.Address) bool {
	if c := compareHosts(a.Host(), b.Host()); c != 0 {
		return c < 0
	}
	if a.Port() != b.Port() {
		return a.Port() < b.Port()
	}
	return a.Path() < b.Path()
}

func compareHosts(a, b string) int {
	ipA, errA := netip.ParseAddr(a)
	ipB, errB := netip.ParseAddr(b)
	switch {
	case errA == nil && errB == nil:
		return ipA.Unmap().Compare(ipB.Unmap())
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
