// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"fmt"
	"strings"

	"github.com/snncore/gennsl/dsl"
	"github.com/snncore/gennsl/genv"
	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/merge"
	"github.com/snncore/gennsl/model"
)

// EmitCustomUpdate renders one custom-update kernel: a flat loop over
// NumNeurons, with every borrowed VarReference bound as a plain field
// read/write in addition to the update's own Vars. Custom updates only
// ever launch when their own UpdateGroup fires, so the caller is
// responsible for grouping by UpdateGroup before deciding which kernels
// run together in one dispatch.
func (e *Emitter) EmitCustomUpdate(mg *merge.MergedCustomUpdate) (string, error) {
	cu := mg.Archetype()
	outer := builtinScope()
	field := genv.NewFieldEnvironment[*model.CustomUpdate](outer, mg.MergedGroup)
	for _, p := range cu.Params {
		vals := make([]float64, len(mg.Members))
		for i, m := range mg.Members {
			vals[i] = paramValue(m.Params, p.Name)
		}
		field.BindField(p.Name, gtype.ScalarType, vals, "", false)
	}
	for _, v := range cu.Vars {
		field.Bind(v.Name, genv.Binding{Type: v.Type, Writable: v.Access == model.ReadWrite, Expand: fmt.Sprintf("group->%s[id]", v.Name)})
	}
	for _, ref := range cu.VarReferences {
		field.Bind(ref, genv.Binding{Type: gtype.ScalarType, Writable: true, Expand: fmt.Sprintf("group->ref_%s[id]", sanitizeRef(ref))})
	}

	src, err := e.transpile(cu.UpdateCodeTokens().Frag, "CustomUpdate:"+cu.Name, field.EnvironmentExternalBase)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "// custom update: %s (group=%s, n=%d)\n", cu.Name, cu.UpdateGroup, cu.NumNeurons)
	b.WriteString(src)
	return b.String(), nil
}

// EmitCustomConnectivityUpdate renders one custom connectivity-update
// kernel: RowUpdateCode runs once per presynaptic row with PreVars/Vars
// bound against that row, and HostUpdateCode (when present) is emitted
// separately as a host-side pass with no per-row indexing, matching the
// structural-plasticity pattern of updating row bookkeeping on the
// device and summary statistics on the host in the same dispatch.
func (e *Emitter) EmitCustomConnectivityUpdate(mg *merge.MergedCustomConnectivityUpdate) (string, string, error) {
	ccu := mg.Archetype()
	outer := builtinScope()
	field := genv.NewFieldEnvironment[*model.CustomConnectivityUpdate](outer, mg.MergedGroup)
	for _, v := range ccu.Vars {
		field.Bind(v.Name, genv.Binding{Type: v.Type, Writable: true, Expand: fmt.Sprintf("group->%s[synIdx]", v.Name)})
	}
	for _, v := range ccu.PreVars {
		field.Bind(v.Name, genv.Binding{Type: v.Type, Writable: true, Expand: fmt.Sprintf("group->pre_%s[preInd]", v.Name)})
	}
	for _, v := range ccu.PostVars {
		field.Bind(v.Name, genv.Binding{Type: v.Type, Writable: true, Expand: fmt.Sprintf("group->post_%s[postInd]", v.Name)})
	}

	rowSrc, err := e.transpile(ccu.RowUpdateCodeTokens().Frag, "RowUpdate:"+ccu.Name, field.EnvironmentExternalBase)
	if err != nil {
		return "", "", err
	}
	var device strings.Builder
	fmt.Fprintf(&device, "// custom connectivity update: %s (group=%s)\n", ccu.Name, ccu.UpdateGroup)
	device.WriteString(rowSrc)

	if ccu.HostUpdateCode == "" {
		return device.String(), "", nil
	}
	// HostUpdateCode is not pre-scanned at Finalise time (it never drives
	// hashing or type-checking the way row-update code does), so it is
	// parsed here on demand, immediately before emission.
	errs := &dsl.ErrorHandler{}
	hostFrag := dsl.Parse(ccu.HostUpdateCode, "HostUpdate:"+ccu.Name, errs)
	if errs.HasErrors() {
		return "", "", &model.FragmentError{Context: "HostUpdate:" + ccu.Name, Diagnostics: errs.Diagnostics}
	}
	hostScope := genv.NewEnvironment(outer)
	hostSrc, err := e.transpile(hostFrag, "HostUpdate:"+ccu.Name, hostScope)
	if err != nil {
		return "", "", err
	}
	return device.String(), hostSrc, nil
}

func sanitizeRef(ref string) string {
	return strings.ReplaceAll(ref, ".", "_")
}
