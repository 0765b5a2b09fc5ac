package cpu

// loopThreshold is how many consecutive steps at one PC go unreported.
// The step after that is logged as stuck.
const loopThreshold = 100

// EnableDebugLogging enables/disables per-instruction tracing
func (cpu *CPU) EnableDebugLogging(enable bool) {
	cpu.enableDebugLogging = enable
}

// EnableLoopDetection enables/disables stuck-PC reporting
func (cpu *CPU) EnableLoopDetection(enable bool) {
	cpu.enableLoopDetection = enable
	cpu.pcStayCount = 0
}

// detectInfiniteLoop reports when the CPU keeps executing at the same PC,
// as a JMP to itself does
func (cpu *CPU) detectInfiniteLoop(pc uint16, opcode uint8) {
	if pc != cpu.lastPC {
		cpu.pcStayCount = 0
		cpu.lastPC = pc
		return
	}
	cpu.pcStayCount++
	if cpu.pcStayCount == loopThreshold+1 || cpu.pcStayCount%10000 == 0 {
		cpu.logger.Printf("[CPU_LOOP] CPU stuck at PC=$%04X executing opcode=0x%02X for %d steps",
			pc, opcode, cpu.pcStayCount)
		cpu.logCPUState(pc, opcode)
	}
}

// logInstruction logs an instruction about to execute
func (cpu *CPU) logInstruction(pc uint16, opcode uint8, op *Opcode) {
	name := "UNK"
	if op != nil {
		name = op.Mnemonic.String()
	}

	cpu.logger.Printf("[CPU_DEBUG] PC=$%04X: %s (0x%02X) | A=$%02X X=$%02X Y=$%02X SP=$%02X | %v",
		pc, name, opcode, cpu.A, cpu.X, cpu.Y, cpu.SP, cpu.P)
}

// logCPUState logs the bytes around pc along with the registers
func (cpu *CPU) logCPUState(pc uint16, opcode uint8) {
	mem1 := cpu.memory.Read(pc + 1)
	mem2 := cpu.memory.Read(pc + 2)

	cpu.logger.Printf("[CPU_STATE] PC=$%04X: (0x%02X %02X %02X) | A=$%02X X=$%02X Y=$%02X SP=$%02X | %v | Steps=%d",
		pc, opcode, mem1, mem2, cpu.A, cpu.X, cpu.Y, cpu.SP, cpu.P, cpu.steps)
}
