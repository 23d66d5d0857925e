// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

// Location says where a backend should keep a variable's backing array.
// It is declared here, rather than in the backend package, because the
// model IR needs it for its own default-location settings and backend
// depends on model — not the other way around.
type Location int

const (
	HostOnly Location = iota
	DeviceOnly
	HostDevice
	HostDeviceZeroCopy
)

func (l Location) String() string {
	switch l {
	case HostOnly:
		return "HOST_ONLY"
	case DeviceOnly:
		return "DEVICE_ONLY"
	case HostDevice:
		return "HOST_DEVICE"
	case HostDeviceZeroCopy:
		return "HOST_DEVICE_ZERO_COPY"
	default:
		return "UNKNOWN_LOCATION"
	}
}

// VarAccess restricts how generated code may use a variable.
type VarAccess int

const (
	ReadWrite VarAccess = iota
	ReadOnly
)
