package audiocodec

import "math"

// downsample picks coarseFrames evenly-spaced frames out of n_frames frames
// of samples (frame-major, channels interleaved), per spec.md S4.4's coarse
// construction (original_source/holo.py's np.linspace(0, n_frames-1, ...)).
func downsample(samples []int16, channels, coarseFrames int) []int16 {
	nFrames := len(samples) / channels
	out := make([]int16, coarseFrames*channels)
	for i := 0; i < coarseFrames; i++ {
		src := linspaceIndex(i, coarseFrames, nFrames)
		copy(out[i*channels:(i+1)*channels], samples[src*channels:(src+1)*channels])
	}
	return out
}

// linspaceIndex returns round(i * (nFrames-1) / (coarseFrames-1)), the
// nearest-frame equivalent of np.linspace(0, nFrames-1, coarseFrames)[i]
// rounded to an integer index for picking coarse samples.
func linspaceIndex(i, coarseFrames, nFrames int) int {
	if coarseFrames <= 1 {
		return 0
	}
	v := float64(i) * float64(nFrames-1) / float64(coarseFrames-1)
	idx := int(math.Round(v))
	if idx > nFrames-1 {
		idx = nFrames - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// upsample linearly interpolates coarse (coarseFrames frames) back up to
// nFrames frames, per spec.md S4.4 and original_source/holo.py's coarse_up
// computation.
func upsample(coarse []int16, channels, coarseFrames, nFrames int) []int16 {
	out := make([]int16, nFrames*channels)
	if coarseFrames <= 1 {
		for i := 0; i < nFrames; i++ {
			copy(out[i*channels:(i+1)*channels], coarse[:channels])
		}
		return out
	}

	for i := 0; i < nFrames; i++ {
		var t float64
		if nFrames > 1 {
			t = float64(i) * float64(coarseFrames-1) / float64(nFrames-1)
		}
		k0 := int(math.Floor(t))
		k1 := k0 + 1
		if k1 > coarseFrames-1 {
			k1 = coarseFrames - 1
		}
		alpha := t - float64(k0)

		for c := 0; c < channels; c++ {
			v0 := float64(coarse[k0*channels+c])
			v1 := float64(coarse[k1*channels+c])
			v := (1-alpha)*v0 + alpha*v1
			out[i*channels+c] = int16(math.Round(v))
		}
	}
	return out
}
