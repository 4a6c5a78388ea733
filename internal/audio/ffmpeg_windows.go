//go:build windows

package audio

// buildFFmpegCaptureArgs constructs FFmpeg arguments for microphone capture on Windows.
func buildFFmpegCaptureArgs(inputFormat, device string) []string {
	return []string{
		"-f", inputFormat,
		"-i", device,
		"-hide_banner",
		"-loglevel", "warning",
		"-vn",
		"-f", "s16le",
		"-ac", "1",
		"-ar", "16000",
		"pipe:1",
	}
}
