// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/hwtb/hwsim"
)

// SDRAMCmd is an SDRAM command, as encoded on the {cs_n, ras_n, cas_n, we_n}
// pins.
//
type SDRAMCmd uint8

// SDRAM commands.
//
const (
	CmdLoadMode   SDRAMCmd = iota // 0000
	CmdRefresh                    // 0001
	CmdPrecharge                  // 0010
	CmdActive                     // 0011
	CmdWrite                      // 0100
	CmdRead                       // 0101
	CmdBurstStop                  // 0110
	CmdNOP                        // 0111
	CmdInhibit                    // 1xxx
)

var cmdNames = [...]string{
	CmdLoadMode:  "LOAD MODE",
	CmdRefresh:   "REFRESH",
	CmdPrecharge: "PRECHARGE",
	CmdActive:    "ACTIVE",
	CmdWrite:     "WRITE",
	CmdRead:      "READ",
	CmdBurstStop: "BURST STOP",
	CmdNOP:       "NOP",
	CmdInhibit:   "INHIBIT",
}

func (c SDRAMCmd) String() string {
	if int(c) < len(cmdNames) {
		return cmdNames[c]
	}
	return "SDRAMCmd(" + strconv.Itoa(int(c)) + ")"
}

// DecodeSDRAMCmd decodes the command pins of an SDRAM.
//
func DecodeSDRAMCmd(csn, rasn, casn, wen bool) SDRAMCmd {
	if csn {
		return CmdInhibit
	}
	var c SDRAMCmd
	if rasn {
		c |= 4
	}
	if casn {
		c |= 2
	}
	if wen {
		c |= 1
	}
	return c
}

func (c SDRAMCmd) pins() (csn, rasn, casn, wen bool) {
	if c == CmdInhibit {
		return true, true, true, true
	}
	return false, c&4 != 0, c&2 != 0, c&1 != 0
}

// SDRAM timings, in ramclock cycles.
//
const (
	SDRAMInitCycles      = 200 // power up delay before the init sequence
	SDRAMtRP             = 2   // PRECHARGE to ACTIVE/REFRESH
	SDRAMtRFC            = 7   // REFRESH to ACTIVE/REFRESH
	SDRAMtMRD            = 2   // LOAD MODE to ACTIVE
	SDRAMtRCD            = 2   // ACTIVE to READ/WRITE
	SDRAMCASLatency      = 2   // READ to data
	SDRAMtWR             = 2   // last write data to PRECHARGE
	SDRAMRefreshInterval = 750 // cycles between two auto refresh commands
)

// SDRAMModeRegister is the mode register value loaded during initialization:
// burst length 1, sequential, CAS latency 2, programmed burst length.
//
const SDRAMModeRegister = SDRAMCASLatency << 4

// Address geometry.
//
const (
	SDRAMColBits  = 9
	SDRAMRowBits  = 13
	SDRAMBankBits = 2
	SDRAMAddrBits = SDRAMColBits + SDRAMRowBits + SDRAMBankBits
	sdramAP       = 1 << 10 // auto precharge / precharge all
)

// SDRAMSplit splits a linear address into bank, row and column.
//
func SDRAMSplit(addr uint64) (bank, row, col uint64) {
	col = addr & (1<<SDRAMColBits - 1)
	row = (addr >> SDRAMColBits) & (1<<SDRAMRowBits - 1)
	bank = (addr >> (SDRAMColBits + SDRAMRowBits)) & (1<<SDRAMBankBits - 1)
	return
}

// SDRAMJoin is the reverse of SDRAMSplit.
//
func SDRAMJoin(bank, row, col uint64) uint64 {
	return bank<<(SDRAMColBits+SDRAMRowBits) | row<<SDRAMColBits | col
}

// SDRAM controller states, as seen on the state probe.
//
const (
	SDRAMPowerUp = iota
	SDRAMInitRefresh1
	SDRAMInitRefresh2
	SDRAMLoadMode
	SDRAMIdle
	SDRAMReadWrite
	SDRAMCapture
	SDRAMDone
)

// sdramPort is the processor side of the controller, clocked by pclock.
// Requests are handed to the core with a toggle signal along with quasi
// static address and data; the core answers with its own toggle.
type sdramPort struct {
	Clk      int     `hw:"in,pclock"`
	Rst      int     `hw:"in,reset"`
	ReadReq  int     `hw:"in,readreq"`
	WriteReq int     `hw:"in,writereq"`
	Read     int     `hw:"in,read"`
	Write    int     `hw:"in,write"`
	Addr     [24]int `hw:"in,fulladdress"`
	DIn      [16]int `hw:"in,d_in"`
	Done     int     `hw:"in,done"`
	RData    [16]int `hw:"in,rdata"`
	Req      int     `hw:"out,req"`
	OpWrite  int     `hw:"out,op_write"`
	ReqAddr  [24]int `hw:"out,req_addr"`
	ReqData  [16]int `hw:"out,req_data"`
	Busy     int     `hw:"out,busy"`
	RdValid  int     `hw:"out,rdvalid"`
	DOut     [16]int `hw:"out,data_out"`

	clk hwsim.Edge
	s   portState
}

type portState struct {
	req, done, wr, busy bool
	valid               bool
	addr, wdata, dout   uint64
}

func (p *sdramPort) Update(c *hwsim.Circuit) {
	if p.clk.Rising(c, p.Clk) {
		p.tick(c)
	}
	s := &p.s
	c.Set(p.Req, s.req)
	c.Set(p.OpWrite, s.wr)
	c.SetBus(p.ReqAddr[:], s.addr)
	c.SetBus(p.ReqData[:], s.wdata)
	c.Set(p.Busy, s.busy)
	c.Set(p.RdValid, s.valid)
	c.SetBus(p.DOut[:], s.dout)
}

func (p *sdramPort) tick(c *hwsim.Circuit) {
	s := &p.s
	if c.Get(p.Rst) {
		*s = portState{}
		return
	}
	if c.Get(p.Read) {
		s.valid = false
	}
	if s.busy {
		if d := c.Get(p.Done); d != s.done {
			s.done = d
			s.busy = false
			if !s.wr {
				s.dout = c.GetBus(p.RData[:])
				s.valid = true
			}
		}
		return
	}
	if c.Get(p.Write) {
		s.wdata = c.GetBus(p.DIn[:])
	}
	rr, wr := c.Get(p.ReadReq), c.Get(p.WriteReq)
	if rr || wr {
		s.addr = c.GetBus(p.Addr[:])
		s.wr = wr && !rr
		s.req = !s.req
		s.busy = true
	}
}

// sdramCore drives the SDRAM chip, clocked by ramclock.
type sdramCore struct {
	Clk      int     `hw:"in,ramclock"`
	Rst      int     `hw:"in,reset"`
	Req      int     `hw:"in,req"`
	OpWrite  int     `hw:"in,op_write"`
	ReqAddr  [24]int `hw:"in,req_addr"`
	ReqData  [16]int `hw:"in,req_data"`
	DQ       [16]int `hw:"in,data_from_ram"`
	CKE      int     `hw:"out,cke"`
	CSn      int     `hw:"out,cs_n"`
	RASn     int     `hw:"out,ras_n"`
	CASn     int     `hw:"out,cas_n"`
	WEn      int     `hw:"out,we_n"`
	BA       [2]int  `hw:"out,ba"`
	A        [13]int `hw:"out,a"`
	UDQM     int     `hw:"out,udqm"`
	LDQM     int     `hw:"out,ldqm"`
	DOut     [16]int `hw:"out,data_to_ram"`
	DOE      int     `hw:"out,data_oe"`
	Done     int     `hw:"out,done"`
	RData    [16]int `hw:"out,rdata"`
	State    [4]int  `hw:"out,state"`

	clk          hwsim.Edge
	state        int
	wait, refcnt int
	init         int
	cmd          SDRAMCmd
	issued       bool
	ba, a        uint64
	dq           uint64
	oe           bool
	req, done    bool
	wr           bool
	addr, wdata  uint64
	rdata        uint64
}

func (m *sdramCore) Update(c *hwsim.Circuit) {
	if m.clk.Rising(c, m.Clk) {
		m.tick(c)
	}
	cmd := m.cmd
	if !m.issued {
		cmd = CmdNOP
	}
	csn, rasn, casn, wen := cmd.pins()
	c.Set(m.CKE, true)
	c.Set(m.CSn, csn)
	c.Set(m.RASn, rasn)
	c.Set(m.CASn, casn)
	c.Set(m.WEn, wen)
	c.SetBus(m.BA[:], m.ba)
	c.SetBus(m.A[:], m.a)
	c.Set(m.UDQM, m.state < SDRAMIdle)
	c.Set(m.LDQM, m.state < SDRAMIdle)
	c.SetBus(m.DOut[:], m.dq)
	c.Set(m.DOE, m.oe)
	c.Set(m.Done, m.done)
	c.SetBus(m.RData[:], m.rdata)
	c.SetBus(m.State[:], uint64(m.state))
}

func (m *sdramCore) issue(cmd SDRAMCmd, ba, a uint64) {
	m.cmd, m.ba, m.a, m.issued = cmd, ba, a, true
}

func (m *sdramCore) tick(c *hwsim.Circuit) {
	if c.Get(m.Rst) {
		m.state, m.wait, m.refcnt, m.init = SDRAMPowerUp, 0, 0, 0
		m.issued, m.oe, m.ba, m.a, m.dq = false, false, 0, 0, 0
		m.req, m.done, m.rdata = false, false, 0
		return
	}
	m.issue(CmdNOP, 0, 0)
	m.oe = false
	if m.state >= SDRAMIdle {
		m.refcnt++
	}
	if m.wait > 0 {
		m.wait--
		return
	}
	switch m.state {
	case SDRAMPowerUp:
		if m.init < SDRAMInitCycles {
			m.init++
			return
		}
		m.issue(CmdPrecharge, 0, sdramAP)
		m.state, m.wait = SDRAMInitRefresh1, SDRAMtRP
	case SDRAMInitRefresh1:
		m.issue(CmdRefresh, 0, 0)
		m.state, m.wait = SDRAMInitRefresh2, SDRAMtRFC
	case SDRAMInitRefresh2:
		m.issue(CmdRefresh, 0, 0)
		m.state, m.wait = SDRAMLoadMode, SDRAMtRFC
	case SDRAMLoadMode:
		m.issue(CmdLoadMode, 0, SDRAMModeRegister)
		m.state, m.wait = SDRAMIdle, SDRAMtMRD
	case SDRAMIdle:
		if m.refcnt >= SDRAMRefreshInterval {
			m.issue(CmdRefresh, 0, 0)
			m.refcnt, m.wait = 0, SDRAMtRFC
			return
		}
		if r := c.Get(m.Req); r != m.req {
			m.req = r
			m.wr = c.Get(m.OpWrite)
			m.addr = c.GetBus(m.ReqAddr[:])
			m.wdata = c.GetBus(m.ReqData[:])
			bank, row, _ := SDRAMSplit(m.addr)
			m.issue(CmdActive, bank, row)
			m.state, m.wait = SDRAMReadWrite, SDRAMtRCD
		}
	case SDRAMReadWrite:
		bank, _, col := SDRAMSplit(m.addr)
		if m.wr {
			m.issue(CmdWrite, bank, col|sdramAP)
			m.dq, m.oe = m.wdata, true
			m.state, m.wait = SDRAMDone, SDRAMtWR+SDRAMtRP
			return
		}
		m.issue(CmdRead, bank, col|sdramAP)
		m.state, m.wait = SDRAMCapture, SDRAMCASLatency
	case SDRAMCapture:
		m.rdata = c.GetBus(m.DQ[:])
		m.state, m.wait = SDRAMDone, SDRAMtRP
	case SDRAMDone:
		m.done = !m.done
		m.state = SDRAMIdle
	}
}

var (
	sdramPortSpec = hwsim.MakePart((*sdramPort)(nil))
	sdramCoreSpec = hwsim.MakePart((*sdramCore)(nil))
)

// SDRAM returns a single port SDRAM controller for a 4 banks, 8192 rows, 512
// columns, 16 bits wide SDRAM chip. The processor side runs on pclock, the
// SDRAM side on ramclock. Both clocks are unrelated.
//
//	Inputs: reset, pclock, ramclock, fulladdress[24], d_in[16], readreq, writereq, read, write, data_from_ram[16]
//	Outputs: data_out[16], rdvalid, busy, cke, cs_n, ras_n, cas_n, we_n, ba[2], a[13], udqm, ldqm, data_to_ram[16], data_oe, state[4]
//
// On a pclock rising edge, write latches d_in as the data of the next write
// request. readreq or writereq then starts a transfer at fulladdress if the
// controller is not busy. busy stays high until the transfer completes. After
// a read, data_out holds the data read and rdvalid is high until read is
// asserted.
//
// The controller keeps udqm and ldqm high until the SDRAM initialization
// sequence is complete: precharge all, two auto refresh and load mode. Reads
// and writes use auto precharge and the controller issues an auto refresh
// every SDRAMRefreshInterval ramclock cycles. state is meant to be used as a
// probe.
//
func SDRAM() hwsim.NewPartFn {
	sync := Sync2(1)
	f, err := hwsim.Chip("SDRAM",
		"reset, pclock, ramclock, fulladdress[24], d_in[16], readreq, writereq, read, write, data_from_ram[16]",
		"data_out[16], rdvalid, busy, cke, cs_n, ras_n, cas_n, we_n, ba[2], a[13], udqm, ldqm, data_to_ram[16], data_oe, state[4]",
		sdramPortSpec.NewPart("pclock=pclock, reset=reset, readreq=readreq, writereq=writereq, read=read, write=write, "+
			"fulladdress[0..23]=fulladdress[0..23], d_in[0..15]=d_in[0..15], done=done_p, rdata[0..15]=rdata[0..15], "+
			"req=req_p, op_write=op_write, req_addr[0..23]=req_addr[0..23], req_data[0..15]=req_data[0..15], "+
			"busy=busy, rdvalid=rdvalid, data_out[0..15]=data_out[0..15]"),
		sync("clk=ramclock, rst=reset, d[0]=req_p, q[0]=req_r"),
		sdramCoreSpec.NewPart("ramclock=ramclock, reset=reset, req=req_r, op_write=op_write, "+
			"req_addr[0..23]=req_addr[0..23], req_data[0..15]=req_data[0..15], data_from_ram[0..15]=data_from_ram[0..15], "+
			"cke=cke, cs_n=cs_n, ras_n=ras_n, cas_n=cas_n, we_n=we_n, ba[0..1]=ba[0..1], a[0..12]=a[0..12], "+
			"udqm=udqm, ldqm=ldqm, data_to_ram[0..15]=data_to_ram[0..15], data_oe=data_oe, done=done_r, "+
			"rdata[0..15]=rdata[0..15], state[0..3]=state[0..3]"),
		sync("clk=pclock, rst=reset, d[0]=done_r, q[0]=done_p"),
	)
	if err != nil {
		panic(err)
	}
	return f
}
