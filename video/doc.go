// Package video provides recording sinks for movie rendering.
//
// A sink receives the frames RenderMovie captures, in order, each with
// its timestamp. Three implementations cover the common cases:
//
//   - Memory buffers frames in RAM for inspection and tests.
//   - PNGSequence writes numbered PNG files to a directory.
//   - BMPSequence writes numbered BMP files, the cheapest encode when
//     frames are large and disk is not.
//
// The file sinks name frames <prefix>_NNNN.<ext>, numbered from 0 in
// capture order.
package video
