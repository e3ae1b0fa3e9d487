package models

import (
	"encoding/hex"
	"fmt"
	"math/bits"
	"strings"

	"regionx/pkg/domain"
	"regionx/pkg/scale"
)

const (
	// CoreMaskBits is the width of a core mask.
	CoreMaskBits = 80
	// TotalParts is the number of parts a core is divided into over one timeslice.
	TotalParts = 57600
	// PartsPerMaskBit is the occupancy each set mask bit stands for.
	PartsPerMaskBit = TotalParts / CoreMaskBits
	// RegionIDSize is the encoded size of a RegionID.
	RegionIDSize = 16
)

// CoreMask is an 80-bit set of core parts, most significant bit first.
type CoreMask [CoreMaskBits / 8]byte

// CompleteMask claims the whole core.
func CompleteMask() CoreMask {
	var m CoreMask
	for i := range m {
		m[i] = 0xff
	}
	return m
}

// MaskFromChunk sets bits [from, to).
func MaskFromChunk(from, to int) CoreMask {
	var m CoreMask
	for i := from; i < to && i < CoreMaskBits; i++ {
		m[i/8] |= 128 >> (i % 8)
	}
	return m
}

func (m CoreMask) CountOnes() int {
	n := 0
	for _, b := range m {
		n += bits.OnesCount8(b)
	}
	return n
}

// Occupancy is the share of the core this mask claims, in parts.
func (m CoreMask) Occupancy() uint32 {
	return uint32(m.CountOnes()) * PartsPerMaskBit
}

func (m CoreMask) String() string {
	return "0x" + hex.EncodeToString(m[:])
}

// RegionID identifies a region: a contiguous span of a core starting at Begin.
type RegionID struct {
	Begin domain.Timeslice `json:"begin"`
	Core  domain.CoreIndex `json:"core"`
	Mask  CoreMask         `json:"mask"`
}

// Encode returns the 16-byte SCALE encoding.
func (id RegionID) Encode() []byte {
	return scale.NewEncoder(RegionIDSize).
		U32(uint32(id.Begin)).
		U16(uint16(id.Core)).
		Raw(id.Mask[:]).
		Bytes()
}

// DecodeRegionID decodes exactly 16 bytes.
func DecodeRegionID(b []byte) (RegionID, error) {
	var id RegionID
	d := scale.NewDecoder(b)
	begin, err := d.U32()
	if err != nil {
		return id, err
	}
	core, err := d.U16()
	if err != nil {
		return id, err
	}
	mask, err := d.Raw(len(id.Mask))
	if err != nil {
		return id, err
	}
	if err := d.Finish(); err != nil {
		return id, err
	}
	id.Begin = domain.Timeslice(begin)
	id.Core = domain.CoreIndex(core)
	copy(id.Mask[:], mask)
	return id, nil
}

// ItemID is the 128-bit non-fungible item id form of a RegionID:
// begin in the top 32 bits, core in the next 16, mask in the low 80.
// Hi holds the upper 64 bits.
type ItemID struct {
	Hi uint64
	Lo uint64
}

func (id RegionID) ItemID() ItemID {
	m := id.Mask
	hi := uint64(id.Begin)<<32 | uint64(id.Core)<<16 | uint64(m[0])<<8 | uint64(m[1])
	var lo uint64
	for _, b := range m[2:] {
		lo = lo<<8 | uint64(b)
	}
	return ItemID{Hi: hi, Lo: lo}
}

func RegionIDFromItem(item ItemID) RegionID {
	var m CoreMask
	m[0] = byte(item.Hi >> 8)
	m[1] = byte(item.Hi)
	for i := 0; i < 8; i++ {
		m[2+i] = byte(item.Lo >> (56 - 8*i))
	}
	return RegionID{
		Begin: domain.Timeslice(item.Hi >> 32),
		Core:  domain.CoreIndex(item.Hi >> 16),
		Mask:  m,
	}
}

// String is the hex form of the 16-byte encoding, used in URLs and events.
func (id RegionID) String() string {
	return "0x" + hex.EncodeToString(id.Encode())
}

// ParseRegionID parses the form produced by String.
func ParseRegionID(s string) (RegionID, error) {
	raw, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return RegionID{}, fmt.Errorf("region id must be 0x-prefixed hex")
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return RegionID{}, fmt.Errorf("region id is not valid hex: %w", err)
	}
	return DecodeRegionID(b)
}

// RegionRecord is the remote chain's authoritative data for a region.
type RegionRecord struct {
	End   domain.Timeslice `json:"end"`
	Owner domain.AccountID `json:"owner"`
	Paid  *domain.Balance  `json:"paid,omitempty"`
}

// Encode returns the SCALE encoding used by the coretime chain's storage.
func (r RegionRecord) Encode() []byte {
	var paid *uint64
	if r.Paid != nil {
		p := uint64(*r.Paid)
		paid = &p
	}
	return scale.NewEncoder(4 + 32 + 17).
		U32(uint32(r.End)).
		Raw(r.Owner[:]).
		OptionU128(paid).
		Bytes()
}

// DecodeRegionRecord decodes a storage value. Trailing bytes are rejected.
func DecodeRegionRecord(b []byte) (RegionRecord, error) {
	var r RegionRecord
	d := scale.NewDecoder(b)
	end, err := d.U32()
	if err != nil {
		return r, err
	}
	owner, err := d.Raw(32)
	if err != nil {
		return r, err
	}
	paid, err := d.OptionU128()
	if err != nil {
		return r, err
	}
	if err := d.Finish(); err != nil {
		return r, err
	}
	r.End = domain.Timeslice(end)
	copy(r.Owner[:], owner)
	if paid != nil {
		p := domain.Balance(*paid)
		r.Paid = &p
	}
	return r, nil
}

// Commitment identifies an outstanding remote GET request.
type Commitment [32]byte

func (c Commitment) String() string {
	return "0x" + hex.EncodeToString(c[:])
}

// RecordStatus names the arm of a Record.
type RecordStatus string

const (
	RecordPending     RecordStatus = "pending"
	RecordUnavailable RecordStatus = "unavailable"
	RecordAvailable   RecordStatus = "available"
)

// Record is the fetch state of a region's RegionRecord. It is exactly one of
// PendingRecord, UnavailableRecord or AvailableRecord.
type Record interface {
	Status() RecordStatus
	isRecord()
}

// PendingRecord waits for the response to the request with Commitment.
type PendingRecord struct {
	Commitment Commitment
}

// UnavailableRecord has no outstanding request and no data.
type UnavailableRecord struct{}

// AvailableRecord holds a fetched record. It is never overwritten.
type AvailableRecord struct {
	Record RegionRecord
}

func (PendingRecord) Status() RecordStatus     { return RecordPending }
func (UnavailableRecord) Status() RecordStatus { return RecordUnavailable }
func (AvailableRecord) Status() RecordStatus   { return RecordAvailable }

func (PendingRecord) isRecord()     {}
func (UnavailableRecord) isRecord() {}
func (AvailableRecord) isRecord()   {}

// Available returns the fetched record, if any.
func Available(r Record) (RegionRecord, bool) {
	if a, ok := r.(AvailableRecord); ok {
		return a.Record, true
	}
	return RegionRecord{}, false
}

// Region is a locally held coretime region.
type Region struct {
	Owner  domain.AccountID
	Locked bool
	Record Record
}

// CheckOwner fails with ErrNotOwner when expected is set and differs from the owner.
func (r *Region) CheckOwner(expected *domain.AccountID) error {
	if expected != nil && *expected != r.Owner {
		return ErrNotOwner
	}
	return nil
}

// CanTransfer checks the lock and the optional owner.
func (r *Region) CanTransfer(expected *domain.AccountID) error {
	if r.Locked {
		return ErrRegionLocked
	}
	return r.CheckOwner(expected)
}

func (r *Region) CanLock(expected *domain.AccountID) error {
	if err := r.CheckOwner(expected); err != nil {
		return err
	}
	if r.Locked {
		return ErrRegionLocked
	}
	return nil
}

func (r *Region) CanUnlock(expected *domain.AccountID) error {
	if err := r.CheckOwner(expected); err != nil {
		return err
	}
	if !r.Locked {
		return ErrRegionNotLocked
	}
	return nil
}

// CanRequestRecord allows a new request only from the unavailable state.
func (r *Region) CanRequestRecord() error {
	if r.Record.Status() != RecordUnavailable {
		return ErrNotUnavailable
	}
	return nil
}

// CanSetRecord refuses to overwrite an available record.
func (r *Region) CanSetRecord() error {
	if r.Record.Status() == RecordAvailable {
		return ErrRegionRecordAlreadySet
	}
	return nil
}
