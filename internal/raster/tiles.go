package raster

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

func decompressDeflate(data []byte) ([]byte, error) {
	if r, err := zlib.NewReader(bytes.NewReader(data)); err == nil {
		defer r.Close()
		if result, err := io.ReadAll(r); err == nil {
			return result, nil
		}
	}
	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()
	return io.ReadAll(fr)
}

// undoHorizontalDifferencing reverses TIFF predictor=2: each sample is
// stored as the delta from the previous sample in the same row.
func undoHorizontalDifferencing(data []byte, width, samplesPerPixel, bytesPerSample int, bo binary.ByteOrder) {
	rowBytes := width * samplesPerPixel * bytesPerSample
	if bytesPerSample != 4 {
		return // only float32 predictor rasters are produced by the tools this reads
	}
	for off := 0; off+rowBytes <= len(data); off += rowBytes {
		row := data[off : off+rowBytes]
		stride := samplesPerPixel * bytesPerSample
		for x := stride; x+4 <= len(row); x += 4 {
			prev := bo.Uint32(row[x-stride : x-stride+4])
			bo.PutUint32(row[x:x+4], bo.Uint32(row[x:x+4])+prev)
		}
	}
}

// readDenseBand materialises band `bandIndex` of the raster as a full
// width*height float32 array, decompressing every tile or strip that
// composes it. This is the only read path File exposes: the renderer never
// needs windowed or resampled access, only whole-band arrays (§4.1).
func (r *File) readDenseBand(bandIndex, width, height int) ([]float32, error) {
	f := &r.f
	bps := 32
	if len(f.BitsPerSample) > bandIndex {
		bps = int(f.BitsPerSample[bandIndex])
	} else if len(f.BitsPerSample) > 0 {
		bps = int(f.BitsPerSample[0])
	}
	bytesPerSample := bps / 8
	spp := int(f.SamplesPerPixel)
	if spp < 1 {
		spp = 1
	}

	out := make([]float32, width*height)

	if f.TileWidth > 0 && f.TileHeight > 0 {
		tilesAcross := f.tilesAcross()
		tilesDown := f.tilesDown()
		tw := int(f.TileWidth)
		th := int(f.TileHeight)

		for row := 0; row < tilesDown; row++ {
			for col := 0; col < tilesAcross; col++ {
				idx := row*tilesAcross + col
				if idx >= len(f.TileOffsets) {
					continue
				}
				raw, err := r.readRawChunk(f.TileOffsets[idx], f.TileByteCounts[idx], tw, spp, bytesPerSample)
				if err != nil {
					return nil, fmt.Errorf("tile (%d,%d): %w", col, row, err)
				}
				if raw == nil {
					continue
				}
				copyTileIntoBand(out, width, height, raw, col*tw, row*th, tw, th, spp, bandIndex, bytesPerSample, f.byteOrder)
			}
		}
		return out, nil
	}

	// Strip-based layout.
	rps := int(f.RowsPerStrip)
	if rps == 0 {
		rps = height
	}
	for s := 0; s < len(f.StripOffsets); s++ {
		startRow := s * rps
		if startRow >= height {
			break
		}
		stripHeight := rps
		if startRow+stripHeight > height {
			stripHeight = height - startRow
		}
		raw, err := r.readRawChunk(f.StripOffsets[s], f.StripByteCounts[s], width, spp, bytesPerSample)
		if err != nil {
			return nil, fmt.Errorf("strip %d: %w", s, err)
		}
		if raw == nil {
			continue
		}
		copyTileIntoBand(out, width, height, raw, 0, startRow, width, stripHeight, spp, bandIndex, bytesPerSample, f.byteOrder)
	}
	return out, nil
}

// readRawChunk reads, decompresses and (if predictor=2) de-differences one
// tile or strip's worth of raw sample bytes.
func (r *File) readRawChunk(offset, size uint64, chunkWidth, spp, bytesPerSample int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	end := offset + size
	if end > uint64(len(r.data)) {
		return nil, fmt.Errorf("chunk [%d:%d] exceeds file size %d", offset, end, len(r.data))
	}
	chunk := r.data[offset:end]

	var decoded []byte
	switch r.f.Compression {
	case 0, 1:
		decoded = chunk
	case 8, 32946:
		dec, err := decompressDeflate(chunk)
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		decoded = dec
	case 5:
		dec, err := decompressTIFFLZW(chunk)
		if err != nil {
			return nil, fmt.Errorf("lzw: %w", err)
		}
		decoded = dec
	default:
		return nil, fmt.Errorf("unsupported compression %d", r.f.Compression)
	}

	if r.f.Predictor == 2 {
		undoHorizontalDifferencing(decoded, chunkWidth, spp, bytesPerSample, r.f.byteOrder)
	}
	return decoded, nil
}

// copyTileIntoBand decodes one band's samples out of a chunky-interleaved
// raw buffer and writes them into the dense output array at (originX,
// originY), clipping at the raster edges (partial edge tiles).
func copyTileIntoBand(out []float32, width, height int, raw []byte, originX, originY, tileW, tileH, spp, bandIndex, bytesPerSample int, bo binary.ByteOrder) {
	rowStride := tileW * spp * bytesPerSample
	for ty := 0; ty < tileH; ty++ {
		y := originY + ty
		if y >= height {
			break
		}
		rowOff := ty * rowStride
		if rowOff+rowStride > len(raw) {
			break
		}
		for tx := 0; tx < tileW; tx++ {
			x := originX + tx
			if x >= width {
				continue
			}
			sampleOff := rowOff + (tx*spp+bandIndex)*bytesPerSample
			if sampleOff+bytesPerSample > len(raw) {
				continue
			}
			var v float32
			switch bytesPerSample {
			case 4:
				v = math.Float32frombits(bo.Uint32(raw[sampleOff : sampleOff+4]))
			case 8:
				v = float32(math.Float64frombits(bo.Uint64(raw[sampleOff : sampleOff+8])))
			}
			out[y*width+x] = v
		}
	}
}
