// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

// These accessors expose the CodeTokens scanned at construction time to
// the kernel emitter (package codegen), which never touches raw source
// strings directly.

func (ng *NeuronGroup) SimCodeTokens() CodeTokens       { return ng.simCode }
func (ng *NeuronGroup) ThresholdCodeTokens() CodeTokens { return ng.thresholdCode }
func (ng *NeuronGroup) ResetCodeTokens() CodeTokens     { return ng.resetCode }

func (w WeightUpdateModel) SimCodeTokens() CodeTokens        { return w.simCode }
func (w WeightUpdateModel) EventCodeTokens() CodeTokens      { return w.eventCode }
func (w WeightUpdateModel) PostLearnCodeTokens() CodeTokens  { return w.postLearnCode }
func (w WeightUpdateModel) SynapseDynTokens() CodeTokens     { return w.synapseDynCode }
func (w WeightUpdateModel) PreDynTokens() CodeTokens         { return w.preDynCode }
func (w WeightUpdateModel) PostDynTokens() CodeTokens        { return w.postDynCode }

func (p PostsynapticModel) ApplyInputTokens() CodeTokens { return p.applyInputCode }
func (p PostsynapticModel) DecayTokens() CodeTokens      { return p.decayCode }

func (c ConnectivityInit) RowBuildTokens() CodeTokens  { return c.rowBuild }
func (c ConnectivityInit) ColBuildTokens() CodeTokens  { return c.colBuild }
func (c ConnectivityInit) KernelBuildTokens() CodeTokens { return c.kernBuild }

func (cs *CurrentSource) InjectionCodeTokens() CodeTokens { return cs.injectionCode }

func (cu *CustomUpdate) UpdateCodeTokens() CodeTokens { return cu.updateCode }

func (ccu *CustomConnectivityUpdate) RowUpdateCodeTokens() CodeTokens { return ccu.rowUpdateCode }
