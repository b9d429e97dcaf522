package modbusctrl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	mbserver "github.com/tbrandon/mbserver"

	"github.com/Agrid-Dev/thermoprops/internal/ports"
	"github.com/Agrid-Dev/thermoprops/internal/saturation"
)

// Register map.
//
//	HR 0-1   requested pressure, Pa, uint32 high word first (read/write).
//	         A lookup runs when HR1 is written, so a single-register write
//	         of HR0 only stages the high word.
//	IR 0     status of the last lookup (Status*)
//	IR 1-20  pressure, temperature, h_l, h_v, rho_l, rho_v, s_l, s_v, u_l, u_v
//	         as float32, high word first
const (
	holdingRegisters = 2
	propertyCount    = 10
	inputRegisters   = 1 + 2*propertyCount
)

// Values of IR 0.
const (
	StatusNone       uint16 = 0
	StatusOK         uint16 = 1
	StatusInvalid    uint16 = 2
	StatusOutOfRange uint16 = 3
	StatusError      uint16 = 4
)

// Config for the Modbus controller.
type Config struct {
	Addr   string
	UnitID byte // UnitID (Modbus slave/unit ID). Use an integer 1..247.
}

type Controller struct {
	svc ports.PropertiesService
	cfg Config
	log *slog.Logger

	mu        sync.Mutex
	requested uint32
	status    uint16
	values    [propertyCount]float32

	serv *mbserver.Server
}

func New(svc ports.PropertiesService, cfg Config, logger *slog.Logger) (*Controller, error) {
	if cfg.UnitID == 0 || cfg.UnitID > 247 {
		return nil, errors.New("modbus: UnitID must be in 1..247")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1502"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{svc: svc, cfg: cfg, log: logger.With("controller", "modbus")}, nil
}

// Run starts the Modbus server. Writes to the holding registers trigger a
// lookup whose result is exposed in the input registers. It blocks until ctx
// is canceled.
func (c *Controller) Run(ctx context.Context) error {
	serv := mbserver.NewServer()
	c.serv = serv

	// Register handlers BEFORE starting the TCP listener to avoid races inside mbserver
	// between handler registration and the server's goroutines.
	serv.RegisterFunctionHandler(3, func(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		start, qty, exc := readRange(frame.GetData(), holdingRegisters)
		if exc != &mbserver.Success {
			return []byte{}, exc
		}
		regs := c.holding()
		return registerBytes(regs[start : start+qty]), &mbserver.Success
	})

	serv.RegisterFunctionHandler(4, func(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		start, qty, exc := readRange(frame.GetData(), inputRegisters)
		if exc != &mbserver.Success {
			return []byte{}, exc
		}
		regs := c.input()
		return registerBytes(regs[start : start+qty]), &mbserver.Success
	})

	// Write Single Register (function 6)
	serv.RegisterFunctionHandler(6, func(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		data := frame.GetData()
		if len(data) < 4 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		addr := int(binary.BigEndian.Uint16(data[0:2]))
		value := binary.BigEndian.Uint16(data[2:4])
		if addr >= holdingRegisters {
			return []byte{}, &mbserver.IllegalDataAddress
		}

		c.write(ctx, addr, []uint16{value})

		resp := make([]byte, 4)
		copy(resp, data[0:4])
		return resp, &mbserver.Success
	})

	// Write Multiple Registers (function 16)
	serv.RegisterFunctionHandler(16, func(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		d := frame.GetData()
		if len(d) < 5 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		start := binary.BigEndian.Uint16(d[0:2])
		quantity := binary.BigEndian.Uint16(d[2:4])
		byteCount := int(d[4])
		if quantity == 0 || byteCount != int(quantity)*2 || len(d) < 5+byteCount {
			return []byte{}, &mbserver.IllegalDataValue
		}
		if int(start)+int(quantity) > holdingRegisters {
			return []byte{}, &mbserver.IllegalDataAddress
		}

		vals := make([]uint16, quantity)
		for i := range vals {
			vals[i] = binary.BigEndian.Uint16(d[5+i*2 : 5+i*2+2])
		}
		c.write(ctx, int(start), vals)

		resp := make([]byte, 4)
		binary.BigEndian.PutUint16(resp[0:2], start)
		binary.BigEndian.PutUint16(resp[2:4], quantity)
		return resp, &mbserver.Success
	})

	// Now start listening after all handlers are registered.
	if err := serv.ListenTCP(c.cfg.Addr); err != nil {
		return fmt.Errorf("mbserver listen tcp %s: %w", c.cfg.Addr, err)
	}
	c.log.Info("modbus controller listening", "addr", c.cfg.Addr, "unit_id", c.cfg.UnitID)

	// Block until ctx.Done()
	<-ctx.Done()
	serv.Close()
	return ctx.Err()
}

// readRange validates a read request against a bank of n registers.
func readRange(data []byte, n int) (start, qty int, exc *mbserver.Exception) {
	if len(data) < 4 {
		return 0, 0, &mbserver.IllegalDataValue
	}
	start = int(binary.BigEndian.Uint16(data[0:2]))
	qty = int(binary.BigEndian.Uint16(data[2:4]))
	if qty == 0 || qty > 125 {
		return 0, 0, &mbserver.IllegalDataValue
	}
	if start+qty > n {
		return 0, 0, &mbserver.IllegalDataAddress
	}
	return start, qty, &mbserver.Success
}

// write stores vals at addr in the holding registers and, when the write
// reaches the low word, looks up the resulting pressure. The lock is held
// across the lookup so the registers always describe one request.
func (c *Controller) write(ctx context.Context, addr int, vals []uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()

	regs := splitUint32(c.requested)
	copy(regs[addr:], vals)
	c.requested = uint32(regs[0])<<16 | uint32(regs[1])
	if addr+len(vals) < holdingRegisters {
		return
	}

	props, err := c.svc.Properties(ctx, float64(c.requested))
	c.status = statusFor(err)
	if err != nil {
		if c.status == StatusError {
			c.log.Error("lookup failed", "pressure_pa", c.requested, "err", err)
		}
		c.values = [propertyCount]float32{}
		return
	}
	c.values = [propertyCount]float32{
		float32(props.Pressure),
		float32(props.Temperature),
		float32(props.HLiquid),
		float32(props.HVapor),
		float32(props.RhoLiquid),
		float32(props.RhoVapor),
		float32(props.SLiquid),
		float32(props.SVapor),
		float32(props.ULiquid),
		float32(props.UVapor),
	}
}

func statusFor(err error) uint16 {
	var oor *saturation.OutOfRangeError
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, saturation.ErrInvalidPressure):
		return StatusInvalid
	case errors.As(err, &oor):
		return StatusOutOfRange
	default:
		return StatusError
	}
}

func (c *Controller) holding() []uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	regs := splitUint32(c.requested)
	return regs[:]
}

func (c *Controller) input() []uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	regs := make([]uint16, 0, inputRegisters)
	regs = append(regs, c.status)
	for _, v := range c.values {
		w := splitUint32(math.Float32bits(v))
		regs = append(regs, w[0], w[1])
	}
	return regs
}

func splitUint32(v uint32) [2]uint16 {
	return [2]uint16{uint16(v >> 16), uint16(v)}
}

// registerBytes builds a read response: byte count + register bytes.
func registerBytes(regs []uint16) []byte {
	resp := make([]byte, 1+len(regs)*2)
	resp[0] = byte(len(regs) * 2)
	for i, r := range regs {
		binary.BigEndian.PutUint16(resp[1+i*2:1+i*2+2], r)
	}
	return resp
}
