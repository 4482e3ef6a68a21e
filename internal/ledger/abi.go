package ledger

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Contract ABI surface of the PaymentRequest ledger:
//
//	createRequest(address,uint256,string,uint256) returns (uint256)
//	getRequest(uint256) returns (id, requester, payer, amount, description,
//	                             createdAt, dueDate, status, paymentReference,
//	                             exists)
//	getUserRequests(address) returns (uint256[])
//	getUserPayments(address) returns (uint256[])

const wordSize = 32

var (
	selectorCreateRequest   = selector("createRequest(address,uint256,string,uint256)")
	selectorGetRequest      = selector("getRequest(uint256)")
	selectorGetUserRequests = selector("getUserRequests(address)")
	selectorGetUserPayments = selector("getUserPayments(address)")
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func selector(signature string) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	return hash.Sum(nil)[:4]
}

// ValidAddress reports whether value is a 0x-prefixed 20-byte hex address.
func ValidAddress(value string) bool {
	return addressPattern.MatchString(value)
}

func encodeCreateRequest(payer string, amount int64, description string, dueDate int64) ([]byte, error) {
	payerWord, err := addressWord(payer)
	if err != nil {
		return nil, err
	}

	// Head: payer, amount, offset-to-string, dueDate. Tail: string length + data.
	data := make([]byte, 0, 4+6*wordSize+len(description))
	data = append(data, selectorCreateRequest...)
	data = append(data, payerWord...)
	data = append(data, uintWord(uint64(amount))...)
	data = append(data, uintWord(4*wordSize)...)
	data = append(data, uintWord(uint64(dueDate))...)
	data = append(data, uintWord(uint64(len(description)))...)
	data = append(data, rightPad([]byte(description))...)
	return data, nil
}

func encodeGetRequest(id uint64) []byte {
	data := make([]byte, 0, 4+wordSize)
	data = append(data, selectorGetRequest...)
	data = append(data, uintWord(id)...)
	return data
}

func encodeGetUserRequests(address string) ([]byte, error) {
	return encodeAddressCall(selectorGetUserRequests, address)
}

func encodeGetUserPayments(address string) ([]byte, error) {
	return encodeAddressCall(selectorGetUserPayments, address)
}

func encodeAddressCall(sel []byte, address string) ([]byte, error) {
	word, err := addressWord(address)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, 4+wordSize)
	data = append(data, sel...)
	data = append(data, word...)
	return data, nil
}

// decodeRequestTuple parses the getRequest return payload. The tuple is
// dynamic (it carries two strings), so the payload starts with an offset to
// the tuple body.
func decodeRequestTuple(data []byte) (PaymentRequest, error) {
	var req PaymentRequest

	offset, err := wordUint(data, 0)
	if err != nil {
		return req, err
	}
	body := data[min(int(offset), len(data)):]
	if len(body) < 10*wordSize {
		return req, fmt.Errorf("request tuple too short: %d bytes", len(body))
	}

	fields := make([]uint64, 10)
	for i := range fields {
		value, err := wordUint(body, i)
		if err != nil {
			return req, err
		}
		fields[i] = value
	}

	req.ID = fields[0]
	req.Requester = wordAddress(body, 1)
	req.Payer = wordAddress(body, 2)
	req.Amount = int64(fields[3])
	req.CreatedAt = int64(fields[5])
	req.DueDate = int64(fields[6])

	status, err := StatusFromOrdinal(uint8(fields[7]))
	if err != nil {
		return req, err
	}
	req.Status = status
	req.Exists = fields[9] != 0

	if req.Description, err = stringAt(body, fields[4]); err != nil {
		return req, fmt.Errorf("decoding description: %w", err)
	}
	if req.PaymentReference, err = stringAt(body, fields[8]); err != nil {
		return req, fmt.Errorf("decoding payment reference: %w", err)
	}
	return req, nil
}

// decodeUintSlice parses a uint256[] return payload into ids.
func decodeUintSlice(data []byte) ([]uint64, error) {
	offset, err := wordUint(data, 0)
	if err != nil {
		return nil, err
	}
	body := data[min(int(offset), len(data)):]
	length, err := wordUint(body, 0)
	if err != nil {
		return nil, err
	}
	// The length word is attacker-controlled input; bound it by the payload
	// before sizing the slice.
	if length > uint64(len(body)/wordSize) {
		return nil, fmt.Errorf("uint slice length %d exceeds payload of %d bytes", length, len(body))
	}
	ids := make([]uint64, 0, length)
	for i := 0; i < int(length); i++ {
		value, err := wordUint(body, i+1)
		if err != nil {
			return nil, err
		}
		ids = append(ids, value)
	}
	return ids, nil
}

func stringAt(body []byte, offset uint64) (string, error) {
	if int(offset)+wordSize > len(body) {
		return "", fmt.Errorf("string offset %d out of range", offset)
	}
	section := body[offset:]
	length, err := wordUint(section, 0)
	if err != nil {
		return "", err
	}
	start := wordSize
	end := start + int(length)
	if end > len(section) {
		return "", fmt.Errorf("string length %d out of range", length)
	}
	return string(section[start:end]), nil
}

func uintWord(value uint64) []byte {
	word := make([]byte, wordSize)
	binary.BigEndian.PutUint64(word[wordSize-8:], value)
	return word
}

func addressWord(address string) ([]byte, error) {
	if !ValidAddress(address) {
		return nil, fmt.Errorf("malformed address %q", address)
	}
	raw, err := hex.DecodeString(address[2:])
	if err != nil {
		return nil, fmt.Errorf("malformed address %q: %w", address, err)
	}
	word := make([]byte, wordSize)
	copy(word[wordSize-20:], raw)
	return word, nil
}

func rightPad(data []byte) []byte {
	if rem := len(data) % wordSize; rem != 0 {
		padded := make([]byte, len(data)+wordSize-rem)
		copy(padded, data)
		return padded
	}
	return data
}

func wordUint(data []byte, index int) (uint64, error) {
	start := index * wordSize
	end := start + wordSize
	if end > len(data) {
		return 0, fmt.Errorf("abi payload truncated at word %d", index)
	}
	word := data[start:end]
	for _, b := range word[:wordSize-8] {
		if b != 0 {
			return 0, fmt.Errorf("abi word %d overflows uint64", index)
		}
	}
	return binary.BigEndian.Uint64(word[wordSize-8:]), nil
}

func wordAddress(data []byte, index int) string {
	start := index*wordSize + (wordSize - 20)
	return "0x" + strings.ToLower(hex.EncodeToString(data[start:start+20]))
}
