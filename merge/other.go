// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import "github.com/snncore/gennsl/model"

// MergedCurrentSource wraps a MergedGroup of *model.CurrentSource.
type MergedCurrentSource struct {
	*MergedGroup[*model.CurrentSource]
}

// PartitionCurrentSources partitions current sources for the injection
// emission pass.
func PartitionCurrentSources(sources []*model.CurrentSource) []*MergedCurrentSource {
	parts := Partition(sources, (*model.CurrentSource).HashDigest)
	out := make([]*MergedCurrentSource, len(parts))
	for i, p := range parts {
		out[i] = &MergedCurrentSource{MergedGroup: p}
	}
	return out
}

// MergedCustomUpdate wraps a MergedGroup of *model.CustomUpdate.
type MergedCustomUpdate struct {
	*MergedGroup[*model.CustomUpdate]
}

// PartitionCustomUpdates partitions custom updates sharing the same
// UpdateGroup name for one emission pass; callers are expected to have
// already grouped by UpdateGroup before merging, since custom updates in
// different update groups never run in the same launch regardless of
// structural equality.
func PartitionCustomUpdates(updates []*model.CustomUpdate) []*MergedCustomUpdate {
	parts := Partition(updates, (*model.CustomUpdate).HashDigest)
	out := make([]*MergedCustomUpdate, len(parts))
	for i, p := range parts {
		out[i] = &MergedCustomUpdate{MergedGroup: p}
	}
	return out
}

// MergedCustomConnectivityUpdate wraps a MergedGroup of
// *model.CustomConnectivityUpdate.
type MergedCustomConnectivityUpdate struct {
	*MergedGroup[*model.CustomConnectivityUpdate]
}

// PartitionCustomConnectivityUpdates partitions custom connectivity
// updates for one emission pass.
func PartitionCustomConnectivityUpdates(updates []*model.CustomConnectivityUpdate) []*MergedCustomConnectivityUpdate {
	parts := Partition(updates, (*model.CustomConnectivityUpdate).HashDigest)
	out := make([]*MergedCustomConnectivityUpdate, len(parts))
	for i, p := range parts {
		out[i] = &MergedCustomConnectivityUpdate{MergedGroup: p}
	}
	return out
}
