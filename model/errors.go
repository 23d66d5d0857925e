// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/snncore/gennsl/dsl"
)

// Configuration-error sentinels, detected at IR construction and
// unrecoverable: they are returned immediately rather than accumulated.
var (
	ErrDuplicateName          = fmt.Errorf("duplicate name")
	ErrFrozen                 = fmt.Errorf("model IR is frozen")
	ErrInvalidMatrixType      = fmt.Errorf("invalid synaptic matrix type combination")
	ErrIncompatibleInitialiser = fmt.Errorf("incompatible initialiser for matrix type")
	ErrUnknownTargetVariable  = fmt.Errorf("unknown target variable")
	ErrUnknownGroup           = fmt.Errorf("unknown group")
)

// ErrSyntax wraps the dsl package's own sentinel of the same name so that
// callers of model can errors.Is against a single stable value regardless
// of which layer actually produced the diagnostic.
var ErrSyntax = fmt.Errorf("%w", dsl.ErrSyntax)
