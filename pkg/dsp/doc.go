// ABOUTME: Shared signal-processing kernels for tempo and feature analysis
// ABOUTME: STFT, onset envelope and vector statistics
// Package dsp holds the numerical building blocks the analysis packages share.
//
// All analysis runs on a mono signal at AnalysisRate with FrameSize/HopSize
// STFT frames, so frame indices line up between the tempo estimator, the
// beat tracker and the chroma/spectrum extractors.
//
// Example:
//
//	x, err := dsp.AnalysisSignal(w)
//	if err != nil {
//	    return err
//	}
//	spec := dsp.AnalysisSpectrogram(x)
//	env := dsp.OnsetEnvelope(spec)
package dsp
