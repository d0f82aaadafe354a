package sensor

import "fmt"

// DHT20 wire protocol. The device returns 7 bytes per measurement:
// status, 20-bit humidity, 20-bit temperature, CRC-8.
const (
	// DefaultI2CAddr is the DHT20's fixed I2C address.
	DefaultI2CAddr = 0x38

	dht20FrameLen  = 7
	statusBusy     = 0x80
	statusCalibBit = 0x08
)

var measureCmd = []byte{0xAC, 0x33, 0x00}

// decodeFrame converts a raw 7-byte DHT20 measurement frame into a Reading.
// Humidity is raw/2^20*100, temperature raw/2^20*200-50, per the datasheet.
func decodeFrame(frame []byte) (Reading, error) {
	if len(frame) != dht20FrameLen {
		return Reading{}, fmt.Errorf("frame length %d, want %d", len(frame), dht20FrameLen)
	}
	if frame[0]&statusBusy != 0 {
		return Reading{}, fmt.Errorf("device busy (status 0x%02x)", frame[0])
	}
	if crc := crc8(frame[:6]); crc != frame[6] {
		return Reading{}, fmt.Errorf("crc mismatch: computed 0x%02x, frame 0x%02x", crc, frame[6])
	}

	rawHum := uint32(frame[1])<<12 | uint32(frame[2])<<4 | uint32(frame[3])>>4
	rawTemp := uint32(frame[3]&0x0F)<<16 | uint32(frame[4])<<8 | uint32(frame[5])

	const scale = 1 << 20
	return Reading{
		Humidity:    float64(rawHum) / scale * 100.0,
		Temperature: float64(rawTemp)/scale*200.0 - 50.0,
	}, nil
}

// crc8 computes the DHT20's CRC (polynomial 0x31, init 0xFF) over data.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
