// SPDX-License-Identifier: MIT

package catalog

import "github.com/ManuGH/pendel/internal/pack"

// ToCandidates maps catalog entries onto engine candidates. Mapping is
// deliberately lossless on validity: zero durations and unknown levels pass
// through, the engine filter owns the decision to drop them.
func ToCandidates(videos []Video) []pack.Candidate {
	out := make([]pack.Candidate, 0, len(videos))
	for _, v := range videos {
		level, _ := pack.ParseLevel(v.Level)
		out = append(out, pack.Candidate{
			ID:          v.ID,
			ChannelID:   v.ChannelID,
			DurationSec: v.DurationSec,
			Topic:       v.Topic,
			Tags:        v.Tags,
			Level:       level,
			PublishedAt: v.PublishedAt,
		})
	}
	return out
}

// IndexByID builds a lookup table so handlers can rehydrate presentation
// fields (title, channel name) for the IDs the engine selected.
func IndexByID(videos []Video) map[string]Video {
	idx := make(map[string]Video, len(videos))
	for _, v := range videos {
		if _, ok := idx[v.ID]; !ok {
			idx[v.ID] = v
		}
	}
	return idx
}
